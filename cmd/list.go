package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credit-eval/cet-console/internal/client"
	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
	"github.com/credit-eval/cet-console/internal/workspace"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [assigned|draft|submitted]",
	Short: "List cases by workflow status, or a case's audit trail",
	Long: `List cases from the database in a simple text format, bucketed the same way
as the console's case list. This works in any terminal environment.

Examples:
  # All three buckets
  cet-console list

  # Only drafts
  cet-console list draft

  # Read through a running server instead of the database
  cet-console list --remote

  # Audit trail of one case
  cet-console list --audit CAS001 --limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var (
	auditCaseID string
	listLimit   int
	listRemote  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&auditCaseID, "audit", "", "Show the audit trail of a case instead of the case list")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of audit entries to show")
	listCmd.Flags().BoolVar(&listRemote, "remote", false, "Fetch cases from api.base_url instead of the database")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()
	out := cmd.OutOrStdout()

	statuses := model.Statuses()
	if len(args) == 1 {
		s, err := model.ParseStatus(args[0])
		if err != nil {
			return err
		}
		statuses = []model.Status{s}
	}

	if listRemote {
		if auditCaseID != "" {
			return fmt.Errorf("--audit reads the database and cannot be combined with --remote")
		}
		cases, err := client.New(config.API.BaseURL, config.API.Timeout).ListCases(ctx)
		if err != nil {
			return fmt.Errorf("failed to list cases: %w", err)
		}
		printCases(out, cases, statuses)
		return nil
	}

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	if auditCaseID != "" {
		return listAudit(ctx, out, st, auditCaseID, listLimit)
	}

	cases, err := st.ListCases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}
	printCases(out, cases, statuses)
	return nil
}

// printCases prints the requested buckets using the console's card format.
func printCases(out io.Writer, cases []model.Case, statuses []model.Status) {
	list := workspace.NewCaseList()
	list.Apply(list.BeginLoad(), cases, nil)

	for _, s := range statuses {
		for i, candidate := range model.Statuses() {
			if candidate == s {
				list.SelectTab(i)
			}
		}
		fmt.Fprintf(out, "%s (%d)\n", s.Label(), list.Count(s))
		fmt.Fprintln(out, strings.Repeat("-", 72))

		cards := list.Cards()
		if len(cards) == 0 {
			fmt.Fprintf(out, "  %s\n\n", list.EmptyMessage())
			continue
		}
		for _, c := range cards {
			fmt.Fprintf(out, "  %-8s %-22s %-20s %16s  %s\n",
				c.ID, c.CustomerName, c.ProgramType, c.LoanAmount, c.AssignmentDate)
		}
		fmt.Fprintln(out)
	}
}

func listAudit(ctx context.Context, out io.Writer, st *store.Store, caseID string, limit int) error {
	entries, err := st.GetAuditEntries(ctx, caseID, limit)
	if err != nil {
		return fmt.Errorf("failed to get audit entries for case %s: %w", caseID, err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No audit entries for case %s.\n", caseID)
		return nil
	}

	fmt.Fprintf(out, "Audit trail for case %s (%d entries):\n\n", caseID, len(entries))
	for i, e := range entries {
		fmt.Fprintf(out, "%d. %s  %-14s by %s\n", i+1, e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Actor)
		if len(e.Details) > 0 {
			fmt.Fprintf(out, "   %v\n", e.Details)
		}
	}
	return nil
}
