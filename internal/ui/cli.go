package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/almanac/internal/config"
	"github.com/javiermolinar/almanac/internal/logging"
	"github.com/javiermolinar/almanac/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	root   *cobra.Command
	now    func() time.Time

	debug   bool // Enable debug logging
	noColor bool

	logger   *slog.Logger
	closeLog func() error
	stack    *Stack
}

// Option configures an App.
type Option func(*App)

// WithClock sets the function used for "today".
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config:   cfg,
		now:      time.Now,
		logger:   logging.Discard(),
		closeLog: func() error { return nil },
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "almanac",
		Short: "A calendar for the terminal",
		Long: `Almanac keeps a calendar of events, locally in SQLite or behind an
events API, and edits it from a terminal day view.

Run without a command to open the day view.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStack()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), st.Service, a.config, a.logger)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Write a debug log to "+logging.DebugLogPath)
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.dayCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.monthCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.neighborsCmd())

	return a
}

// setup runs before every command: colors, then logging. The day view
// owns the terminal, so it logs to the debug file only.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.noColor {
		DisableColor()
	}

	logger, closeLog, err := logging.Setup(logging.Options{
		Debug:  a.debug,
		Stderr: cmd.ErrOrStderr(),
		Quiet:  cmd == a.root,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.closeLog = closeLog
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "almanac %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application and releases its resources.
func (a *App) Execute(ctx context.Context) error {
	err := a.root.ExecuteContext(ctx)
	return errors.Join(err, a.Close())
}

// SetArgs overrides the command line, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Close closes the event store and the debug log.
func (a *App) Close() error {
	var errs []error
	if a.stack != nil {
		errs = append(errs, a.stack.Close())
		a.stack = nil
	}
	errs = append(errs, a.closeLog())
	a.closeLog = func() error { return nil }
	return errors.Join(errs...)
}
