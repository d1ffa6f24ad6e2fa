package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

var (
	// ErrScanFailed marks an aborted cycle: the scan did not complete,
	// so nothing was decided and the previous snapshot stays
	// authoritative.
	ErrScanFailed = errors.New("network scan failed")

	// ErrSnapshotPersist marks a cycle whose statuses may have been
	// applied but whose snapshot could not be replaced. The next cycle
	// will re-derive actions from stale presence data, so this is
	// reported separately from provider failures.
	ErrSnapshotPersist = errors.New("snapshot persist failed")

	// ErrPartialFailure marks a completed cycle in which at least one
	// person's status read or write failed after retries.
	ErrPartialFailure = errors.New("some status updates failed")
)

// Summary is the operator-facing outcome of one cycle.
type Summary struct {
	TakenAt  time.Time       `json:"taken_at"`
	Duration time.Duration   `json:"duration"`
	DryRun   bool            `json:"dry_run"`
	Scanned  int             `json:"scanned_hosts"`
	Present  int             `json:"present"`
	Arrived  int             `json:"arrived"`
	Departed int             `json:"departed"`
	Skipped  int             `json:"skipped_break"`
	Applied  int             `json:"set_succeeded"`
	Failed   int             `json:"set_failed"`
	Actions  []domain.Action `json:"actions,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
}

// Cycle orchestrates one reconciliation run: scan, diff against the
// stored snapshot, decide actions, apply them, persist the new
// snapshot.
type Cycle struct {
	scanner    ports.Scanner
	roster     ports.RosterSource
	snapshots  ports.SnapshotStore
	reconciler *Reconciler
	applier    *Applier
	clock      ports.Clock

	// hosts are the scan targets; empty means "probe exactly the
	// roster addresses".
	hosts []string
}

func NewCycle(scanner ports.Scanner, roster ports.RosterSource, snapshots ports.SnapshotStore, reconciler *Reconciler, applier *Applier, hosts []string, clock ports.Clock) *Cycle {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Cycle{
		scanner:    scanner,
		roster:     roster,
		snapshots:  snapshots,
		reconciler: reconciler,
		applier:    applier,
		clock:      clock,
		hosts:      hosts,
	}
}

// Run executes one full cycle. With dryRun set it stops after deciding:
// no statuses are written and the snapshot is not replaced, but read
// failures still make the run partially failed. A scan or roster
// failure aborts before any mutation; apply failures are collected
// into the summary, the snapshot is persisted regardless, and the run
// is reported as partially failed.
func (c *Cycle) Run(ctx context.Context, dryRun bool) (Summary, error) {
	started := c.clock.Now()

	roster, err := c.roster.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load roster: %w", err)
	}

	targets := c.hosts
	if len(targets) == 0 {
		targets = make([]string, 0, len(roster))
		for _, person := range roster {
			targets = append(targets, person.Address)
		}
	}

	hosts, err := c.scanner.Scan(ctx, targets)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	prev, err := c.snapshots.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load snapshot: %w", err)
	}

	res, err := c.reconciler.Reconcile(ctx, roster, hosts, prev)
	if err != nil {
		return Summary{}, fmt.Errorf("reconcile: %w", err)
	}

	summary := Summary{
		TakenAt:  res.Diff.Next.TakenAt,
		DryRun:   dryRun,
		Scanned:  len(hosts),
		Present:  len(res.Diff.Current),
		Arrived:  len(res.Diff.Arrived),
		Departed: len(res.Diff.Departed),
		Actions:  res.Actions,
	}
	for _, failure := range res.Failures {
		summary.Failed++
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", failure.Person, failure.Err))
	}

	if dryRun {
		for _, action := range res.Actions {
			if action.Kind == domain.ActionSkipBreak {
				summary.Skipped++
			}
		}
		summary.Errors = capErrorList(summary.Errors, summary.Failed)
		summary.Duration = c.clock.Now().Sub(started)
		if summary.Failed > 0 {
			return summary, fmt.Errorf("%w: %d status reads failed", ErrPartialFailure, summary.Failed)
		}
		return summary, nil
	}

	applied := c.applier.Apply(ctx, res.Actions)
	summary.Skipped = applied.Skipped
	summary.Applied = applied.Succeeded
	summary.Failed += applied.Failed
	for _, applyErr := range applied.Errors {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", applyErr.Person, applyErr.Err))
	}
	summary.Errors = capErrorList(summary.Errors, summary.Failed)

	if err := c.snapshots.Save(ctx, res.Diff.Next); err != nil {
		summary.Duration = c.clock.Now().Sub(started)
		return summary, fmt.Errorf("%w: %w", ErrSnapshotPersist, err)
	}

	summary.Duration = c.clock.Now().Sub(started)
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d people", ErrPartialFailure, summary.Failed, summary.Failed+summary.Applied)
	}

	return summary, nil
}

// capErrorList keeps a mass outage readable: at most maxReportedErrors
// messages survive, with a trailing marker accounting for the rest of
// the failed count.
func capErrorList(errs []string, failed int) []string {
	if failed <= maxReportedErrors {
		return errs
	}
	if len(errs) > maxReportedErrors {
		errs = errs[:maxReportedErrors]
	}
	return append(errs, fmt.Sprintf("%d more not shown", failed-maxReportedErrors))
}
