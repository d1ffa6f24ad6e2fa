package domain

import (
	"slices"
	"time"
)

// Snapshot records who was reachable as of the last completed cycle.
// Present holds the people whose workstations answered the scan; Known
// additionally holds the people from the cycle before that, so a
// departure stays visible for exactly one extra cycle. Present is
// always a subset of Known.
type Snapshot struct {
	TakenAt time.Time
	Present []PersonID
	Known   []PersonID
}

// Normalize sorts and dedupes both sets and folds Present into Known so
// the subset invariant holds regardless of how the snapshot was built.
func (s Snapshot) Normalize() Snapshot {
	present := dedupeSorted(s.Present)
	known := dedupeSorted(append(slices.Clone(s.Known), present...))

	return Snapshot{
		TakenAt: s.TakenAt,
		Present: present,
		Known:   known,
	}
}

func (s Snapshot) IsPresent(id PersonID) bool {
	return slices.Contains(s.Present, id)
}

func (s Snapshot) IsKnown(id PersonID) bool {
	return slices.Contains(s.Known, id)
}

func dedupeSorted(ids []PersonID) []PersonID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
