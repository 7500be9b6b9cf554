package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bluujobs/internal/app"
	"bluujobs/internal/domain/user"
)

func newSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the demo dataset into absent collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				n, err := c.Seed(ctx)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), opts.Format, map[string]int{"seeded": n}, []Field{{"seeded", n}})
			})
		},
	}
}

func newReconcileCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Drop dangling records and recompute applicants and ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				rep, err := c.Admin.Reconcile(ctx, user.System)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), opts.Format, rep, []Field{
					{"jobs synced", rep.JobsSynced},
					{"users rated", rep.UsersRated},
					{"sessions refreshed", rep.SessionsRefreshed},
					{"orphaned applications", rep.OrphanedApplications},
					{"orphaned favorites", rep.OrphanedFavorites},
				})
			})
		},
	}
}

func newStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print collection counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				st, err := c.Admin.Stats(ctx)
				if err != nil {
					return err
				}
				fields := []Field{
					{"users", st.TotalUsers},
					{"workers", st.Workers},
					{"employers", st.Employers},
					{"jobs", st.TotalJobs},
					{"open jobs", st.OpenJobs},
					{"closed jobs", st.ClosedJobs},
					{"applications", st.TotalApplications},
					{"pending applications", st.PendingApplications},
				}
				fields = append(fields, sortedCounts("category ", st.JobsByCategory)...)
				return write(cmd.OutOrStdout(), opts.Format, st, fields)
			})
		},
	}
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Write a collection as a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				raw, err := c.Admin.Export(ctx, args[0])
				if err != nil {
					return fmt.Errorf("export %s: %w", args[0], err)
				}
				var buf bytes.Buffer
				if err := json.Indent(&buf, raw, "", "  "); err != nil {
					return fmt.Errorf("export %s: %w", args[0], err)
				}
				buf.WriteByte('\n')

				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				return os.WriteFile(output, buf.Bytes(), 0o644)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	return cmd
}
