package ports

import "context"

// Host is one reachable address observed by a network scan.
type Host struct {
	Address string
	Name    string
}

// Scanner probes a set of host addresses and returns the reachable
// subset. A per-host timeout means "unreachable", never an error; a
// returned error means the scan as a whole did not complete and the
// cycle must not act on its partial result.
type Scanner interface {
	Scan(ctx context.Context, hosts []string) ([]Host, error)
}
