package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/credit-eval/cet-console/internal/client"
	"github.com/credit-eval/cet-console/internal/ui"
	"github.com/credit-eval/cet-console/internal/workspace"
)

var consoleTheme string

// consoleCmd runs only the console against an existing API.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the console against a running CET API",
	Long: `Open the terminal console and read cases from api.base_url (or --api-url).
No database is opened, so nothing is audited; use "serve" for a local
all-in-one setup.

Examples:
  cet-console console --api-url http://cet.internal:8000
  cet-console console --theme light`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Force console mode even in unsupported terminals")
	consoleCmd.Flags().StringVar(&consoleTheme, "theme", "", "Console theme: dark or light (default: ui.theme)")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()
	if consoleTheme != "" {
		config.UI.Theme = consoleTheme
	}

	switch decideTUI(false, forceTUI) {
	case tuiPseudoTTY:
		fmt.Fprintln(os.Stderr, "No TTY available, using script command for pseudo-TTY...")
		return runWithPseudoTTY()
	case tuiHeadless:
		return fmt.Errorf("console cannot be initialized in this terminal (%s); try `cet-console list --remote`", getTerminalInfo())
	}

	uiLog, closeUILog := uiLogger("cet-console-ui.log")
	defer closeUILog()
	uiLog.Printf("Reading cases from %s", config.API.BaseURL)

	console := ui.NewUI(ctx, client.New(config.API.BaseURL, config.API.Timeout), ui.Options{
		Theme: config.UI.Theme,
		Workspace: workspace.Options{
			AnalysisDelay: config.Workspace.AnalysisDelay,
			FiscalYears:   config.Workspace.FiscalYears,
		},
	}, uiLog)
	return console.Start(ctx)
}
