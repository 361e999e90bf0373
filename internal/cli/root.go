// Package cli implements the payment-tracker command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/payment-tracker/internal/bootstrap"
	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/payments"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile    string
	Store      string
	SQLitePath string
	Format     string

	// open builds the backends a command runs against.
	open func(ctx context.Context, opts *RootOptions) (*App, error)
}

// App is what a command runs against.
type App struct {
	Store    store.Store
	Payments *payments.Service
	Log      zerolog.Logger

	closers []io.Closer
}

// Close releases the backends in reverse order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewRootCommand creates the root command backed by the configured stores.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openApp)
}

func newRootCommand(open func(ctx context.Context, opts *RootOptions) (*App, error)) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "payment-tracker",
		Short: "Manage accounts, cost centers and payments",
		Long:  "Command line access to the payment tracker store: list and add records, run reports, seed sample data.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the environment")
	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "store backend (memory|sqlite|bigquery), overrides STORE_BACKEND")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", "", "SQLite database path, overrides SQLITE_PATH")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newAccountsCommand(opts))
	cmd.AddCommand(newCostCentersCommand(opts))
	cmd.AddCommand(newPaymentsCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))

	return cmd
}

// openApp loads config, applies flag overrides and opens the backends.
func openApp(ctx context.Context, opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if opts.Store != "" {
		cfg.StoreBackend = opts.Store
	}
	if opts.SQLitePath != "" {
		cfg.SQLitePath = opts.SQLitePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	app := &App{Log: log}
	st, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.Store = st
	app.closers = append(app.closers, st)

	files, err := bootstrap.OpenAttachments(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, files)

	engine, err := bootstrap.NewEngine(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Payments = payments.NewService(st, files, nil, engine, log)
	return app, nil
}

// withApp opens the backends, runs fn and closes them.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := opts.open(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(logger.WithContext(ctx, app.Log), app)
}

// writeJSON prints v indented.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
