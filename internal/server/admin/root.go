// Package admin implements the spectra-admin maintenance commands.
package admin

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
	"github.com/Extra154/spectra-data-server/internal/server/services"
	"github.com/Extra154/spectra-data-server/internal/server/storage"
)

type openFunc func(ctx context.Context, cfg *config.Config) (repomanager.RepositoryManager, error)

type options struct {
	cfg      config.Config
	logLevel string
	open     openFunc
}

// NewRootCommand returns the admin command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	return newRootCommand(out, storage.Open)
}

func newRootCommand(out io.Writer, open openFunc) *cobra.Command {
	opts := &options{open: open}
	opts.cfg.LoadDefaults()

	root := &cobra.Command{
		Use:           "spectra-admin",
		Short:         "Maintenance tasks for the spectra sync store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfg.StoreDriver, "driver", opts.cfg.StoreDriver, "store driver: postgres or memory")
	flags.StringVar(&opts.cfg.DatabaseDSN, "dsn", opts.cfg.DatabaseDSN, "PostgreSQL DSN")
	flags.DurationVar(&opts.cfg.StoryTTL, "story-ttl", opts.cfg.StoryTTL, "story lifetime")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	root.AddCommand(
		newMigrateCommand(opts),
		newSweepCommand(opts),
		newAuditCommand(opts),
	)
	return root
}

// withStore validates flags, opens the store and hands it to fn.
func (o *options) withStore(cmd *cobra.Command, fn func(ctx context.Context, rm repomanager.RepositoryManager, log logging.Logger) error) error {
	if err := o.cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rm, err := o.open(ctx, &o.cfg)
	if err != nil {
		return err
	}
	defer rm.Close()

	return fn(ctx, rm, logging.NewJSONLogger(cmd.ErrOrStderr(), o.logLevel))
}

func newMigrateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withStore(cmd, func(context.Context, repomanager.RepositoryManager, logging.Logger) error {
				fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", o.cfg.StoreDriver)
				return nil
			})
		},
	}
}

func newSweepCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-stories",
		Short: "Delete stories older than the story TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withStore(cmd, func(ctx context.Context, rm repomanager.RepositoryManager, log logging.Logger) error {
				svc := services.NewStoryService(rm, clock.RealClock{}, clock.UUIDGenerator{}, &o.cfg, log)
				n, err := svc.Sweep(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired stories (ttl %s)\n", n, o.cfg.StoryTTL)
				return nil
			})
		},
	}
}

func newAuditCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "audit-counters",
		Short: "Report engagement counters that disagree with their membership rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withStore(cmd, func(ctx context.Context, rm repomanager.RepositoryManager, log logging.Logger) error {
				svc := services.NewEngagementService(rm, clock.RealClock{}, clock.UUIDGenerator{}, &o.cfg, log)
				drift, err := svc.Audit(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(drift) == 0 {
					fmt.Fprintln(w, "no counter drift")
					return nil
				}
				for _, d := range drift {
					fmt.Fprintf(w, "%s\t%s\tstored=%d\tactual=%d\n", d.Target, d.Counter, d.Stored, d.Actual)
				}
				return fmt.Errorf("%d drifted counters", len(drift))
			})
		},
	}
}

// Execute runs the admin command tree with a deadline.
func Execute(ctx context.Context, out io.Writer, args []string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	root := NewRootCommand(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
