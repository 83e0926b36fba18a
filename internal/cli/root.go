package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/viewdb/internal/metrics"
	"github.com/roach88/viewdb/internal/record"
	"github.com/roach88/viewdb/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Metrics bool   // print selection counters to stderr after the command
	Config  Config

	logger    *slog.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the viewdb CLI.
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := LoadConfig()
	opts := &RootOptions{Config: cfg}

	cmd := &cobra.Command{
		Use:   "viewdb",
		Short: "viewdb - select and update records through views",
		Long: `Load a record set into an in-memory store and work on it through views.

Read-only selections can be narrowed repeatedly and shared freely; mutable
selections hold their records exclusively until released.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", cfgErr)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			level, err := opts.Config.Level()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if opts.Metrics {
				opts.registry = prometheus.NewRegistry()
				opts.collector, err = metrics.NewCollector(opts.registry)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to set up metrics", err)
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.registry == nil {
				return nil
			}
			return printMetrics(cmd.ErrOrStderr(), opts.registry)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print selection metrics to stderr")

	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))

	return cmd
}

// newStore wraps records in a Store wired to the command's logger and
// metrics collector.
func (o *RootOptions) newStore(records []record.Object) *store.Store[record.Object] {
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	storeOpts := []store.Option{store.WithLogger(logger)}
	if o.collector != nil {
		storeOpts = append(storeOpts, store.WithObserver(o.collector))
	}
	return store.New(records, storeOpts...)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
