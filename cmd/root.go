package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	dbPath   string
	redisURL string
	logLevel string
	apiURL   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cet-console",
	Short: "Terminal console for credit evaluation case management",
	Long: `cet-console is a terminal-first credit evaluation tool. It serves the case
REST API, stores cases in SQLite, and provides a TUI for working through a case:
customers, due diligence, banking, repayment track record, financials, PD++ and
Credit++ analysis.

Features:
- Case list bucketed by workflow status (assigned, draft, submitted)
- Case detail workspace with summary tiles and ten working tabs
- REST API (GET /api/cases, GET /api/cases/{id})
- Folder ingestion of JSON, JSONL and YAML case files
- Redis Streams case notifications`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cet-console.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/cet-console.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "redis://localhost:6379", "Redis connection URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://127.0.0.1:8000", "Base URL of the case API used by the console")

	// Bind flags to viper
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cet-console")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("database.path", "./data/cet-console.db")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("api.bind", ":8000")
	viper.SetDefault("api.base_url", "http://127.0.0.1:8000")
	viper.SetDefault("api.timeout", "10s")
	viper.SetDefault("api.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	viper.SetDefault("ingest.dir", "data/incoming")
	viper.SetDefault("workspace.analysis_delay", "2s")
	viper.SetDefault("workspace.fiscal_years", 4)
	viper.SetDefault("ui.theme", "dark")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		API: APIConfig{
			Bind:        viper.GetString("api.bind"),
			BaseURL:     viper.GetString("api.base_url"),
			Timeout:     viper.GetDuration("api.timeout"),
			CORSOrigins: viper.GetStringSlice("api.cors_origins"),
		},
		Ingest: IngestConfig{
			Dir: viper.GetString("ingest.dir"),
		},
		Workspace: WorkspaceConfig{
			AnalysisDelay: viper.GetDuration("workspace.analysis_delay"),
			FiscalYears:   viper.GetInt("workspace.fiscal_years"),
		},
		UI: UIConfig{
			Theme: viper.GetString("ui.theme"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	API       APIConfig       `mapstructure:"api"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	UI        UIConfig        `mapstructure:"ui"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type APIConfig struct {
	Bind        string        `mapstructure:"bind"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
}

type IngestConfig struct {
	Dir string `mapstructure:"dir"`
}

type WorkspaceConfig struct {
	AnalysisDelay time.Duration `mapstructure:"analysis_delay"`
	FiscalYears   int           `mapstructure:"fiscal_years"`
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
}
