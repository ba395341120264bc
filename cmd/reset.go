package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/credit-eval/cet-console/internal/bus"
)

var (
	confirmReset  bool
	resetRedis    bool
	resetDB       bool
	resetFlushAll bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the case stream and/or database",
	Long: `Reset clears the Redis cases stream and/or the SQLite database.

By default both are reset. Use --redis-only or --db-only to pick one.
--flush-all empties the whole Redis database instead of only the cases stream.

WARNING: This operation is irreversible and will permanently delete all data.

Examples:
  # Reset both (asks for confirmation)
  cet-console reset

  # Reset with automatic confirmation
  cet-console reset --yes

  # Only the database
  cet-console reset --db-only`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Automatically confirm reset operation")
	resetCmd.Flags().BoolVar(&resetRedis, "redis-only", false, "Reset only Redis data")
	resetCmd.Flags().BoolVar(&resetDB, "db-only", false, "Reset only the database")
	resetCmd.Flags().BoolVar(&resetFlushAll, "flush-all", false, "FLUSHDB the Redis database instead of deleting the cases stream")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()
	out := cmd.OutOrStdout()

	if !resetRedis && !resetDB {
		resetRedis = true
		resetDB = true
	}

	var targets []string
	if resetRedis {
		if resetFlushAll {
			targets = append(targets, "all Redis data")
		} else {
			targets = append(targets, "the Redis cases stream")
		}
	}
	if resetDB {
		targets = append(targets, "the SQLite database")
	}
	fmt.Fprintf(out, "This will permanently delete %s\n", strings.Join(targets, " and "))

	if !confirmReset && !confirm(cmd, "Are you sure you want to continue? (y/N): ") {
		fmt.Fprintln(out, "Reset operation cancelled.")
		return nil
	}

	if resetRedis {
		if err := resetRedisData(ctx, out, config.Redis.URL, resetFlushAll); err != nil {
			if !resetDB {
				return fmt.Errorf("failed to reset Redis data: %w", err)
			}
			fmt.Fprintf(out, "Warning: Failed to reset Redis data: %v\n", err)
			if !confirmReset && !confirm(cmd, "Would you like to continue with database reset only? (y/N): ") {
				return fmt.Errorf("reset operation cancelled due to Redis connection failure")
			}
		} else {
			fmt.Fprintln(out, "✓ Redis data cleared successfully")
		}
	}

	if resetDB {
		path := resolvePathRelativeToBase(getWorkingDir(), config.Database.Path)
		if err := resetDatabase(out, path); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		fmt.Fprintln(out, "✓ Database cleared successfully")
	}

	fmt.Fprintln(out, "Reset operation completed successfully!")
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	var response string
	fmt.Fscanln(cmd.InOrStdin(), &response)
	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}

func resetRedisData(ctx context.Context, out io.Writer, redisURL string, flushAll bool) error {
	if !flushAll {
		rb, err := bus.NewRedisBus(redisURL, log.New(io.Discard, "", 0))
		if err != nil {
			return err
		}
		defer rb.Close()
		return rb.Flush(ctx)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	keys, err := client.Keys(ctx, "*").Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis keys: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(out, "No Redis data found to clear")
		return nil
	}
	fmt.Fprintf(out, "Clearing %d Redis keys/streams...\n", len(keys))
	if err := client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush Redis database: %w", err)
	}
	return nil
}

// resetDatabase removes the SQLite file and its WAL companions.
func resetDatabase(out io.Writer, dbPath string) error {
	var removed []string
	for _, file := range []string{dbPath, dbPath + "-shm", dbPath + "-wal"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove database file %s: %w", file, err)
		}
		removed = append(removed, filepath.Base(file))
	}

	if len(removed) == 0 {
		fmt.Fprintln(out, "No database files found to remove")
		return nil
	}
	fmt.Fprintf(out, "Removed database files: %s\n", strings.Join(removed, ", "))
	return nil
}
