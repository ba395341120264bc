package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/credit-eval/cet-console/internal/api"
	"github.com/credit-eval/cet-console/internal/bus"
	"github.com/credit-eval/cet-console/internal/client"
	"github.com/credit-eval/cet-console/internal/fixtures"
	"github.com/credit-eval/cet-console/internal/ingest"
	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
	"github.com/credit-eval/cet-console/internal/ui"
	"github.com/credit-eval/cet-console/internal/workspace"
)

const consumerGroup = "cet-console"

var (
	noTUI     bool
	forceTUI  bool
	serveBind string
	serveSeed bool
	noWatch   bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the case API, background services and the console",
	Long: `Start the CET server which includes:

1. REST API serving /api/cases and /api/cases/{id}
2. Terminal console for credit evaluation case work
3. Redis Streams consumer for case notifications
4. Folder watcher importing case files dropped into ingest.dir

The serve command runs until interrupted (Ctrl+C) or the console is closed.

Examples:
  # Start with console (default)
  cet-console serve

  # Headless API only
  cet-console serve --no-tui

  # Load the reference cases into an empty database first
  cet-console serve --seed`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Run in headless mode without the console")
	serveCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Force console mode even in unsupported terminals")
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "API listen address (default: api.bind)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Seed the reference cases when the database is empty")
	serveCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch ingest.dir for case files")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()
	if serveBind != "" {
		config.API.Bind = serveBind
	}

	mode := decideTUI(noTUI, forceTUI)
	if mode == tuiPseudoTTY {
		fmt.Fprintln(os.Stderr, "No TTY available, using script command for pseudo-TTY...")
		return runWithPseudoTTY()
	}
	withTUI := mode == tuiDirect

	logger, closeLog := commandLogger("[serve] ", "cet-console-serve.log", withTUI)
	defer closeLog()

	logger.Println("Starting CET server")
	if !noTUI && !withTUI {
		logger.Println("Console cannot be initialized in this terminal environment, running headless")
		logger.Printf("Terminal info: %s", getTerminalInfo())
	}

	dbPath := resolvePathRelativeToBase(getWorkingDir(), config.Database.Path)
	logger.Printf("Using database at %s", dbPath)
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	// Service logs would scribble over the console; they still reach the file.
	svcLogger := logger
	if withTUI {
		svcLogger = log.New(io.Discard, "", 0)
		if f := openLogFile("cet-console-serve.log"); f != nil {
			defer f.Close()
			svcLogger = log.New(f, "[services] ", log.LstdFlags)
		}
	}

	logger.Println("Connecting to event bus...")
	eventBus := bus.NewBus(config.Redis.URL, svcLogger)
	defer eventBus.Close()

	if serveSeed {
		if err := seedIfEmpty(ctx, st, eventBus, logger); err != nil {
			return err
		}
	}

	// Listen before anything reads from the API so the console's first
	// fetch cannot race the server start.
	ln, err := net.Listen("tcp", config.API.Bind)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.API.Bind, err)
	}

	handler := api.NewHandler(st, eventBus, svcLogger)
	server := api.NewServer(api.ServerConfig{
		Bind:        config.API.Bind,
		CORSOrigins: config.API.CORSOrigins,
		LogLevel:    config.Log.Level,
	}, handler, svcLogger)

	svcCtx, svcCancel := context.WithCancel(ctx)
	defer svcCancel()
	g, gctx := errgroup.WithContext(svcCtx)

	g.Go(func() error { return server.Serve(gctx, ln) })

	coordinator := &ServiceCoordinator{
		store:  st,
		bus:    eventBus,
		logger: svcLogger,
		counts: make(map[string]int),
	}
	g.Go(func() error { return coordinator.runConsumer(gctx) })
	g.Go(func() error { return coordinator.runHealthMonitor(gctx) })

	if !noWatch {
		ingestDir := resolvePathRelativeToBase(getWorkingDir(), config.Ingest.Dir)
		if err := os.MkdirAll(ingestDir, 0755); err != nil {
			logger.Printf("Warning: could not create ingest directory %s: %v", ingestDir, err)
		} else {
			folder := ingest.NewFolderIngestor(st, eventBus, ingest.FolderOptions{
				Dir:         ingestDir,
				Watch:       true,
				Logger:      svcLogger,
				TailFromEnd: true,
			})
			g.Go(func() error {
				if err := folder.Run(gctx); err != nil && gctx.Err() == nil {
					// a broken watcher should not take the API down
					logger.Printf("Folder ingest error: %v", err)
				}
				return nil
			})
		}
	}

	if withTUI {
		logger.Printf("Starting console (%s)", getTerminalInfo())
		uiLog, closeUILog := uiLogger("cet-console-ui.log")
		defer closeUILog()

		baseURL := config.API.BaseURL
		if !cmd.Flags().Changed("api-url") {
			baseURL = loopbackURL(ln.Addr())
		}
		console := ui.NewUI(gctx, client.New(baseURL, config.API.Timeout), ui.Options{
			Theme: config.UI.Theme,
			Workspace: workspace.Options{
				AnalysisDelay: config.Workspace.AnalysisDelay,
				FiscalYears:   config.Workspace.FiscalYears,
			},
			Audit: st,
		}, uiLog)
		g.Go(func() error {
			defer svcCancel()
			if err := console.Start(gctx); err != nil {
				return fmt.Errorf("console error: %w", err)
			}
			logger.Println("Console exited, cancelling background services...")
			return nil
		})
	} else {
		logger.Printf("Running in headless mode, API on %s", ln.Addr())
	}

	err = g.Wait()
	coordinator.logSummary(logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Println("CET server stopped")
	return nil
}

// loopbackURL is the URL the local console uses to reach the listener.
func loopbackURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// seedIfEmpty loads the reference cases when the store has none.
func seedIfEmpty(ctx context.Context, st *store.Store, b bus.Bus, logger *log.Logger) error {
	n, err := st.CountCases(ctx)
	if err != nil {
		return fmt.Errorf("failed to count cases: %w", err)
	}
	if n > 0 {
		logger.Printf("Database holds %d cases, skipping seed", n)
		return nil
	}
	cases := fixtures.MockCases()
	logger.Printf("Seeding %d reference cases", len(cases))
	return seedCases(ctx, st, b, cases, logger)
}

// ServiceCoordinator runs the background services next to the API.
type ServiceCoordinator struct {
	store  *store.Store
	bus    bus.Bus
	logger *log.Logger

	mu     sync.Mutex
	counts map[string]int
}

// runConsumer follows the cases stream, reconnecting with a backoff when
// the read fails.
func (sc *ServiceCoordinator) runConsumer(ctx context.Context) error {
	consumer := "serve-" + uuid.NewString()[:8]
	backoff := time.Second
	for {
		err := sc.bus.ReadCaseEvents(ctx, consumerGroup, consumer, sc.handleCaseEvent)
		if ctx.Err() != nil {
			return nil
		}
		sc.logger.Printf("Case consumer stopped: %v; retrying in %s", err, backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (sc *ServiceCoordinator) handleCaseEvent(ctx context.Context, msg bus.CaseMessage) error {
	sc.mu.Lock()
	sc.counts[msg.Action]++
	sc.mu.Unlock()
	sc.logger.Printf("Case event: %s %s (status=%s)", msg.Action, msg.CaseID, msg.Status)
	return nil
}

// runHealthMonitor checks the bus every 30s and logs bucket counts every minute.
func (sc *ServiceCoordinator) runHealthMonitor(ctx context.Context) error {
	health := time.NewTicker(30 * time.Second)
	defer health.Stop()
	metrics := time.NewTicker(time.Minute)
	defer metrics.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-health.C:
			sc.performHealthChecks(ctx)
		case <-metrics.C:
			sc.collectMetrics(ctx)
		}
	}
}

func (sc *ServiceCoordinator) performHealthChecks(ctx context.Context) {
	hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sc.bus.HealthCheck(hctx); err != nil {
		sc.logger.Printf("Bus health check failed: %v", err)
	}
	if _, err := sc.store.CountCases(hctx); err != nil {
		sc.logger.Printf("Database health check failed: %v", err)
	}
}

func (sc *ServiceCoordinator) collectMetrics(ctx context.Context) {
	mctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	counts, err := sc.store.CountByStatus(mctx)
	if err != nil {
		sc.logger.Printf("Failed to collect case metrics: %v", err)
		return
	}
	for _, s := range model.Statuses() {
		sc.logger.Printf("Cases %s: %d", s, counts[s])
	}
	if stats, err := sc.bus.GetStats(mctx); err == nil {
		sc.logger.Printf("Bus stats: %v", stats)
	}
}

func (sc *ServiceCoordinator) logSummary(logger *log.Logger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if len(sc.counts) == 0 {
		return
	}
	logger.Printf("Case events consumed: %v", sc.counts)
}
