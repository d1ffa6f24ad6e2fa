package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	rendersummary "github.com/ofckit/ofc/internal/adapters/render/summary"
)

type presenceReport struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	Address string    `json:"address"`
	Present bool      `json:"present"`
	Tracked bool      `json:"tracked"`
	AsOf    time.Time `json:"as_of,omitempty"`
}

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the roster against the last recorded scan",
		Long:  "status reads the roster and the persisted snapshot and reports who was present at the last completed scan. It never touches the network.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, app, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runStatus(cmd *cobra.Command, app *app, asJSON bool) error {
	ctx := cmd.Context()

	people, err := app.roster.Load(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	snapshot, err := app.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if asJSON {
		reports := make([]presenceReport, 0, len(people))
		for _, person := range people {
			reports = append(reports, presenceReport{
				ID:      string(person.ID),
				Name:    person.DisplayName,
				Address: person.Address,
				Present: snapshot.IsPresent(person.ID),
				Tracked: snapshot.IsKnown(person.ID),
				AsOf:    snapshot.TakenAt,
			})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	rendered, err := rendersummary.RenderOverview(people, snapshot, rendersummary.RenderOptions{
		Now:        app.now(),
		StaleAfter: staleAfter(app),
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// staleAfter marks the snapshot stale once it is older than two watch
// intervals, with a floor of one hour for one-shot usage.
func staleAfter(app *app) time.Duration {
	interval := app.cfg.GetDuration("watch.interval")
	if interval <= 0 {
		return defaultStaleAfter
	}

	stale := 2 * interval
	if stale < defaultStaleAfter {
		stale = defaultStaleAfter
	}

	return stale
}
