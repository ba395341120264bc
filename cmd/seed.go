package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/credit-eval/cet-console/internal/bus"
	"github.com/credit-eval/cet-console/internal/fixtures"
	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
)

var (
	seedGenerate int
	seedFile     string
	seedRandSeed int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed sample cases into the database",
	Long: `Seed cases into the SQLite database. By default the three reference cases
(one per workflow status) are written. Existing cases with the same IDs are replaced.

Examples:
  # Reference cases
  cet-console seed

  # 50 generated dummy cases
  cet-console seed --generate 50

  # Cases from a fixture file (.json, .jsonl, .yaml)
  cet-console seed --file ./fixtures/cases.yaml`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedGenerate, "generate", 0, "Generate N dummy cases instead of the reference cases")
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Load cases from a JSON, JSONL or YAML fixture file")
	seedCmd.Flags().Int64Var(&seedRandSeed, "rand-seed", 0, "Random seed for --generate (default: current time)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[seed] ", log.LstdFlags)

	var cases []model.Case
	switch {
	case seedFile != "" && seedGenerate > 0:
		return fmt.Errorf("--file and --generate are mutually exclusive")
	case seedFile != "":
		loaded, err := fixtures.LoadFile(seedFile)
		if err != nil {
			return fmt.Errorf("failed to load fixture file: %w", err)
		}
		cases = loaded
	case seedGenerate > 0:
		rs := seedRandSeed
		if rs == 0 {
			rs = time.Now().UnixNano()
		}
		cases = fixtures.NewGenerator(rs).Generate(seedGenerate)
	default:
		cases = fixtures.MockCases()
	}

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	eventBus := bus.NewBus(config.Redis.URL, logger)
	defer eventBus.Close()

	logger.Printf("Seeding %d cases...", len(cases))
	if err := seedCases(ctx, st, eventBus, cases, logger); err != nil {
		return err
	}

	counts, err := st.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to count cases: %w", err)
	}
	for _, s := range model.Statuses() {
		logger.Printf("  %-10s %d", s.Label(), counts[s])
	}
	logger.Println("Seeding completed")
	return nil
}

// seedCases writes cases in one transaction, audits each one and announces
// it on the bus.
func seedCases(ctx context.Context, st *store.Store, b bus.Bus, cases []model.Case, logger *log.Logger) error {
	if err := st.UpsertCases(ctx, cases); err != nil {
		return fmt.Errorf("failed to write cases: %w", err)
	}
	for _, c := range cases {
		if err := st.LogCaseAction(ctx, c.ID, store.ActionSeeded, "seed", map[string]interface{}{
			"status": string(c.Status),
		}); err != nil {
			logger.Printf("Failed to audit seeded case %s: %v", c.ID, err)
		}
		_ = b.PublishCaseEvent(ctx, bus.CaseMessage{
			CaseID:    c.ID,
			Action:    bus.ActionSeeded,
			Status:    string(c.Status),
			Timestamp: time.Now().Unix(),
		})
	}
	return nil
}
