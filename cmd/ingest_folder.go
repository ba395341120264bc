package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credit-eval/cet-console/internal/bus"
	"github.com/credit-eval/cet-console/internal/ingest"
	"github.com/credit-eval/cet-console/internal/store"
)

var (
	folderDir      string
	folderWatch    bool
	folderPatterns string
)

// ingestFolderCmd represents the ingest-folder command
var ingestFolderCmd = &cobra.Command{
	Use:   "ingest-folder",
	Short: "Import case files from a directory (optionally watch for changes)",
	Long: `Import cases from a directory. JSON files hold one case or an array of cases,
JSONL files hold one case per line, YAML files hold a list of cases.

Examples:
  # One-shot: import existing files and exit
  cet-console ingest-folder --dir ./incoming

  # Watch mode: tail JSONL appends and reimport changed JSON/YAML files
  cet-console ingest-folder --dir ./incoming --watch

  # Only line-delimited files
  cet-console ingest-folder --dir ./incoming --pattern "*.jsonl"`,
	RunE: runIngestFolder,
}

func init() {
	rootCmd.AddCommand(ingestFolderCmd)

	ingestFolderCmd.Flags().StringVar(&folderDir, "dir", "", "Directory to read files from (default: ingest.dir)")
	ingestFolderCmd.Flags().BoolVar(&folderWatch, "watch", false, "Watch directory for changes and tail JSONL files")
	ingestFolderCmd.Flags().StringVar(&folderPatterns, "pattern", "*.json,*.jsonl,*.yaml,*.yml", "Comma-separated glob patterns to match")
}

func runIngestFolder(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	logger := log.New(os.Stderr, "[ingest-folder] ", log.LstdFlags)

	dir := folderDir
	if dir == "" {
		dir = cfg.Ingest.Dir
	}

	st, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	eventBus := bus.NewBus(cfg.Redis.URL, logger)
	defer eventBus.Close()

	opts := ingest.FolderOptions{
		Dir:      dir,
		Watch:    folderWatch,
		Patterns: splitPatterns(folderPatterns),
		Logger:   logger,
	}

	logger.Printf("Starting ingest-folder dir=%s watch=%v patterns=%v", opts.Dir, opts.Watch, opts.Patterns)

	ingestor := ingest.NewFolderIngestor(st, eventBus, opts)
	if err := ingestor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ingest-folder error: %w", err)
	}

	ingested, failed := ingestor.Stats()
	logger.Printf("ingest-folder completed: ingested=%d errors=%d", ingested, failed)
	return nil
}

func splitPatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
