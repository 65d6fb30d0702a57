package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subtrack/internal/backend"
	"subtrack/internal/cli"
	"subtrack/internal/config"
	"subtrack/internal/core"
	"subtrack/internal/log"
	"subtrack/internal/services"
)

// app carries the state shared by every subcommand for one invocation.
type app struct {
	flagNow     string
	flagBackend string
	flagDB      string
	flagSeed    string

	cfg    *config.Config
	logger *log.Logger
	res    *backend.Result
	svc    *services.SubscriptionService
	now    time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "subctl",
		Short:         "Subscription tracker CLI",
		Long:          "Inspect subscriptions, projected payments and normalized spend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&a.flagNow, "now", "", "Reference date (YYYY-MM-DD), defaults to today")
	root.PersistentFlags().StringVar(&a.flagBackend, "backend", "", "Data backend: sqlite or memory (overrides DATA_BACKEND)")
	root.PersistentFlags().StringVar(&a.flagDB, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&a.flagSeed, "seed", "", "YAML seed file for the memory backend (overrides MEMORY_SEED_FILE)")

	root.AddCommand(
		a.listCmd(),
		a.totalsCmd(),
		a.upcomingCmd(),
		a.calendarCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.pauseCmd(),
		a.resumeCmd(),
		a.schedulePauseCmd(),
		a.applyPausesCmd(),
		a.watchCmd(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	if cmd.Name() == "help" {
		return nil
	}
	cli.LoadEnvFile()

	cfg := config.Load()
	if a.flagBackend != "" {
		cfg.DataBackend = strings.ToLower(a.flagBackend)
	}
	if a.flagDB != "" {
		cfg.SQLiteDBPath = a.flagDB
	}
	if a.flagSeed != "" {
		cfg.SeedFile = a.flagSeed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// Diagnostics go to stderr so command output stays clean.
	a.logger = log.New(log.Config{
		Component: log.ComponentCLI,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cliLogLevel(cfg.LogLevel)}),
	})
	log.SetDefault(a.logger)

	now, err := parseNow(a.flagNow)
	if err != nil {
		return err
	}
	a.now = now

	res, err := cli.OpenBackend(cmd.Context(), cfg, a.logger)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	a.res = res
	a.svc = services.NewSubscriptionService(res.Store, res.Publisher, services.WithClock(func() time.Time { return a.now }))
	return nil
}

func (a *app) close() error {
	if a.res == nil {
		return nil
	}
	err := a.res.Cleanup()
	a.res = nil
	return err
}

// cliLogLevel keeps the CLI quiet unless debug logging was asked for.
func cliLogLevel(level string) slog.Level {
	if l := log.ParseLevel(level); l == slog.LevelDebug || l > slog.LevelWarn {
		return l
	}
	return slog.LevelWarn
}

// parseNow returns the reference instant: noon UTC of the given date, or
// the current time when empty.
func parseNow(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Now(), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: want YYYY-MM-DD", s)
	}
	return d.Add(12 * time.Hour), nil
}
