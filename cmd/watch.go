package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var interval time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run sync cycles on a fixed interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = app.cfg.GetDuration("watch.interval")
			}
			if interval <= 0 {
				return fmt.Errorf("watch interval must be positive")
			}

			return runWatch(cmd, app, interval, asJSON)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between cycles (default from watch.interval)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render each cycle summary as JSON")

	return cmd
}

// runWatch runs one cycle immediately and then one per tick. A failed
// cycle is reported and the loop keeps going; only cancellation stops
// it.
func runWatch(cmd *cobra.Command, app *app, interval time.Duration, asJSON bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := runWatchCycle(ctx, cmd, app, asJSON); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "cycle failed: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func runWatchCycle(ctx context.Context, cmd *cobra.Command, app *app, asJSON bool) error {
	cycleCtx, cancel := context.WithTimeout(ctx, app.cycleTimeout())
	defer cancel()

	provider, err := app.statusProvider(cycleCtx)
	if err != nil {
		return err
	}

	cycle, err := app.cycle(provider)
	if err != nil {
		return err
	}

	summary, runErr := cycle.Run(cycleCtx, false)
	if runErr == nil || summaryUsable(runErr) {
		if writeErr := writeSummaryOutput(cmd, summary, asJSON); writeErr != nil {
			return writeErr
		}
	}

	return runErr
}
