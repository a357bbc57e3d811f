// Package cli is the invoicekit command-line front end. Every command works
// through a single store.Store built from the loaded configuration.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/invoicekit/internal/config"
	"gitlab.com/yelinaung/invoicekit/internal/gemini"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/store"
	"gitlab.com/yelinaung/invoicekit/internal/telemetry"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App carries the dependencies shared by every command. Fields left nil are
// built from configuration on first use.
type App struct {
	Config *config.Config
	Store  *store.Store
	Gemini *gemini.Client
	Now    func() time.Time

	out     io.Writer
	asJSON  bool
	version string
	cleanup []func()
}

// Execute runs the root command against os.Args and exits non-zero on error.
func Execute(info BuildInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	app := &App{}
	root := NewRootCommand(app, info)
	err := root.ExecuteContext(ctx)
	app.Close()
	stop()
	if err != nil {
		logger.WithComponent("cli").Debug().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App, info BuildInfo) *cobra.Command {
	app.version = info.Version
	root := &cobra.Command{
		Use:   "invoicekit",
		Short: "Invoices, clients, bookings and expenses for a small business",
		Long: `invoicekit keeps invoices, clients, a service catalog, bookings and
expenses in a key-value store (local files, PostgreSQL or memory) and
reports on them.

Configuration is read from the environment and an optional .env file:
  STORAGE_BACKEND   file (default), postgres or memory
  DATA_DIR          directory for the file backend (default ./data)
  DATABASE_URL      connection string for the postgres backend
  GEMINI_API_KEY    enables receipt scanning and category suggestions
  TELEMETRY_EXPORTER none (default), stdout or otlp`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app.out = cmd.OutOrStdout()
			if cmd.Name() == "version" {
				return nil
			}
			return app.open(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&app.asJSON, "json", false, "Print results as JSON")

	root.AddCommand(
		newInvoiceCommand(app),
		newClientCommand(app),
		newItemCommand(app),
		newBookingCommand(app),
		newExpenseCommand(app),
		newStatsCommand(app),
		newExportCommand(app),
		newChartCommand(app),
		newMaintenanceCommand(app),
		newVersionCommand(info),
	)
	return root
}

func (a *App) open(ctx context.Context) error {
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.Config == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.Config = cfg
		logger.SetLevel(cfg.LogLevel)
		if cfg.LogFormat == "json" {
			logger.SetJSON()
		}

		shutdown, err := telemetry.Setup(ctx, telemetry.Options{
			Exporter:       cfg.TelemetryExporter,
			Protocol:       cfg.OTLPProtocol,
			ServiceVersion: a.version,
		})
		if err != nil {
			return err
		}
		a.cleanup = append(a.cleanup, func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.WithComponent("telemetry").Warn().Err(err).Msg("Telemetry shutdown failed")
			}
		})
	}
	if a.Store == nil {
		st, closeFn, err := OpenStore(ctx, a.Config, a.Now)
		if err != nil {
			return err
		}
		a.Store = st
		a.cleanup = append(a.cleanup, closeFn)
	}
	return nil
}

// Close releases whatever open acquired.
func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// geminiClient returns the receipt client, creating it from GEMINI_API_KEY.
func (a *App) geminiClient(ctx context.Context) (*gemini.Client, error) {
	if a.Gemini != nil {
		return a.Gemini, nil
	}
	if a.Config == nil || !a.Config.ReceiptScanningEnabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := gemini.NewClient(ctx, a.Config.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	a.Gemini = client
	return client, nil
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "invoicekit %s (commit: %s, built: %s)\n",
				info.Version, info.Commit, info.Date)
		},
	}
}
