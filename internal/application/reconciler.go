package application

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

// DiffResult is the pure set arithmetic of one reconciliation cycle.
type DiffResult struct {
	Current  []domain.PersonID
	Arrived  []domain.PersonID
	Departed []domain.PersonID
	Next     domain.Snapshot
}

// Diff compares the people reachable right now against the previous
// snapshot. The next snapshot keeps single-cycle history: Known is the
// union of the current and previous Present sets, so a departed person
// is re-evaluated for exactly one more cycle and then dropped. All
// output is sorted; identical input always yields identical output.
func Diff(prev domain.Snapshot, current []domain.PersonID, takenAt time.Time) DiffResult {
	prev = prev.Normalize()

	next := domain.Snapshot{
		TakenAt: takenAt,
		Present: current,
		Known:   append(slices.Clone(current), prev.Present...),
	}.Normalize()

	arrived := make([]domain.PersonID, 0)
	for _, id := range next.Present {
		if !prev.IsPresent(id) {
			arrived = append(arrived, id)
		}
	}

	departed := make([]domain.PersonID, 0)
	for _, id := range prev.Known {
		if !next.IsPresent(id) {
			departed = append(departed, id)
		}
	}

	return DiffResult{
		Current:  next.Present,
		Arrived:  arrived,
		Departed: departed,
		Next:     next,
	}
}

// PersonFailure records a per-person provider failure that did not stop
// the rest of the cycle.
type PersonFailure struct {
	Person domain.PersonID
	Err    error
}

type ReconcileResult struct {
	Diff     DiffResult
	Actions  []domain.Action
	Failures []PersonFailure
}

// Reconciler decides, per person, what status mutation the current scan
// calls for, subject to the break guard. Every decision reads the live
// remote status first: people change their own status at any time, so
// the snapshot is never a substitute for a fresh read.
type Reconciler struct {
	provider    ports.StatusProvider
	guard       domain.BreakGuard
	presentText string
	clock       ports.Clock
}

func NewReconciler(provider ports.StatusProvider, guard domain.BreakGuard, presentText string, clock ports.Clock) *Reconciler {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Reconciler{
		provider:    provider,
		guard:       guard,
		presentText: presentText,
		clock:       clock,
	}
}

// Reconcile maps the scan result onto the roster, diffs it against the
// previous snapshot, and emits the per-person actions. Addresses the
// roster does not know are ignored. Provider read failures are recorded
// per person and do not abort the cycle.
func (r *Reconciler) Reconcile(ctx context.Context, roster []domain.Person, hosts []ports.Host, prev domain.Snapshot) (ReconcileResult, error) {
	if err := ctx.Err(); err != nil {
		return ReconcileResult{}, err
	}

	byAddress := make(map[string]domain.PersonID, len(roster))
	for _, person := range roster {
		byAddress[person.Address] = person.ID
	}

	current := make([]domain.PersonID, 0, len(hosts))
	for _, host := range hosts {
		if id, ok := byAddress[host.Address]; ok {
			current = append(current, id)
		}
	}

	result := ReconcileResult{Diff: Diff(prev, current, r.clock.Now())}

	for _, id := range result.Diff.Current {
		status, err := r.provider.GetStatus(ctx, id)
		if err != nil {
			result.Failures = append(result.Failures, PersonFailure{Person: id, Err: fmt.Errorf("read status: %w", err)})
			continue
		}

		switch {
		case r.guard.OnBreak(status.Text):
			result.Actions = append(result.Actions, domain.Action{Person: id, Kind: domain.ActionSkipBreak, Reason: "on break"})
		case status.Text == r.presentText:
			// Already correct, nothing to do.
		default:
			result.Actions = append(result.Actions, domain.Action{Person: id, Kind: domain.ActionSetPresent, Reason: "workstation reachable"})
		}
	}

	for _, id := range result.Diff.Departed {
		status, err := r.provider.GetStatus(ctx, id)
		if err != nil {
			result.Failures = append(result.Failures, PersonFailure{Person: id, Err: fmt.Errorf("read status: %w", err)})
			continue
		}

		switch {
		case r.guard.OnBreak(status.Text):
			result.Actions = append(result.Actions, domain.Action{Person: id, Kind: domain.ActionSkipBreak, Reason: "on break"})
		case status.Text == "":
			// Already cleared, nothing to do.
		default:
			result.Actions = append(result.Actions, domain.Action{Person: id, Kind: domain.ActionClearAbsent, Reason: "workstation unreachable"})
		}
	}

	return result, nil
}
