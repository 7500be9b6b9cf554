// Package cli implements bluujobsctl, the maintenance tool for a BluuJobs
// store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"bluujobs/internal/app"
	"bluujobs/internal/config"
)

// RootOptions holds global flags and the hooks commands use to reach the
// store.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Open returns a container for the configured backend. Tests replace it.
	Open func(ctx context.Context, logger *log.Logger) (*app.Container, error)
}

var ValidFormats = []string{"text", "json"}

func defaultOpen(ctx context.Context, logger *log.Logger) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.NewContainer(ctx, cfg, logger)
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Open: defaultOpen})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bluujobsctl",
		Short: "Maintain a BluuJobs store",
		Long:  "Seed, inspect, repair and export the collections of a BluuJobs store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newReconcileCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newExportCommand(opts))

	return cmd
}

// logger writes slog text records to w, bridged to the *log.Logger the
// services take.
func (o *RootOptions) logger(w io.Writer) *log.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.NewLogLogger(h, slog.LevelInfo)
}

// withContainer opens the store for one command and closes it afterwards.
func (o *RootOptions) withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := o.logger(cmd.ErrOrStderr())

	c, err := o.Open(ctx, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Printf("[CLI] close failed err=%v", err)
		}
	}()
	return fn(ctx, c)
}
