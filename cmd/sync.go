package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	rendersummary "github.com/ofckit/ofc/internal/adapters/render/summary"
	"github.com/ofckit/ofc/internal/application"
)

func newSyncCmd(app *app) *cobra.Command {
	var dryRun bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one scan-and-update cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, app, dryRun, asJSON)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decide actions without writing statuses or the snapshot")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runSync(cmd *cobra.Command, app *app, dryRun bool, asJSON bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), app.cycleTimeout())
	defer cancel()

	provider, err := app.statusProvider(ctx)
	if err != nil {
		return err
	}

	cycle, err := app.cycle(provider)
	if err != nil {
		return err
	}

	summary, runErr := cycle.Run(ctx, dryRun)
	if runErr != nil && !summaryUsable(runErr) {
		// Aborted before deciding anything, there is no summary to show.
		return runErr
	}

	if writeErr := writeSummaryOutput(cmd, summary, asJSON); writeErr != nil {
		return writeErr
	}

	return runErr
}

// summaryUsable reports whether a failed run still produced a summary
// worth showing: partial provider failures and persist failures happen
// after the cycle has decided and counted everything.
func summaryUsable(err error) bool {
	return errors.Is(err, application.ErrPartialFailure) || errors.Is(err, application.ErrSnapshotPersist)
}

func writeSummaryOutput(cmd *cobra.Command, summary application.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	rendered, err := rendersummary.RenderCycle(summary)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
