// Package ping probes workstation reachability with the system ping
// binary, falling back to the ARP table for hosts that answer no ICMP.
package ping

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ofckit/ofc/internal/ports"
)

const (
	defaultWorkers      = 10
	defaultProbeTimeout = 2 * time.Second
	nameLookupTimeout   = 500 * time.Millisecond
)

// Options configure a Scanner; zero values fall back to defaults that
// match a small-office /24 sweep.
type Options struct {
	Workers      int
	ProbeTimeout time.Duration
	ResolveNames bool
}

type Scanner struct {
	workers      int
	probeTimeout time.Duration
	resolveNames bool

	// Injection points for tests; production wiring keeps the
	// defaults.
	probe   func(ctx context.Context, address string) bool
	arp     func(ctx context.Context, address string) bool
	resolve func(ctx context.Context, address string) string
}

var _ ports.Scanner = (*Scanner)(nil)

func New(opts Options) *Scanner {
	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}

	s := &Scanner{
		workers:      workers,
		probeTimeout: probeTimeout,
		resolveNames: opts.ResolveNames,
	}
	s.probe = s.icmpProbe
	s.arp = arpLookup
	s.resolve = reverseName

	return s
}

// Scan fans the host list out over the worker pool and returns the
// reachable subset sorted by address. A host that times out is simply
// unreachable. If ctx is cancelled mid-scan the whole scan fails:
// callers must never treat a partial sweep as "everyone else left".
func (s *Scanner) Scan(ctx context.Context, hosts []string) ([]ports.Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, nil
	}

	workers := s.workers
	if workers > len(hosts) {
		workers = len(hosts)
	}

	jobs := make(chan string)
	reachable := make(chan ports.Host, len(hosts))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for address := range jobs {
				if ctx.Err() != nil {
					return
				}
				if host, ok := s.probeHost(ctx, address); ok {
					reachable <- host
				}
			}
		}()
	}

feed:
	for _, address := range hosts {
		select {
		case jobs <- address:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(reachable)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan aborted: %w", err)
	}

	found := make([]ports.Host, 0, len(hosts))
	for host := range reachable {
		found = append(found, host)
	}
	sort.Slice(found, func(i, j int) bool {
		return lessAddress(found[i].Address, found[j].Address)
	})

	return found, nil
}

func (s *Scanner) probeHost(ctx context.Context, address string) (ports.Host, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	alive := s.probe(probeCtx, address)
	cancel()

	if !alive {
		// Some devices drop ICMP but still hold an ARP entry.
		arpCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
		alive = s.arp(arpCtx, address)
		cancel()
	}
	if !alive {
		return ports.Host{}, false
	}

	host := ports.Host{Address: address}
	if s.resolveNames {
		nameCtx, cancel := context.WithTimeout(ctx, nameLookupTimeout)
		host.Name = s.resolve(nameCtx, address)
		cancel()
	}

	return host, true
}

func (s *Scanner) icmpProbe(ctx context.Context, address string) bool {
	seconds := int(s.probeTimeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "ping", "-n", "1", "-w", strconv.Itoa(seconds*1000), address)
	} else {
		cmd = exec.CommandContext(ctx, "ping", "-c", "1", "-W", strconv.Itoa(seconds), address)
	}

	return cmd.Run() == nil
}

func arpLookup(ctx context.Context, address string) bool {
	if runtime.GOOS == "linux" {
		return linuxARPEntry(address)
	}

	out, err := exec.CommandContext(ctx, "arp", "-n", address).Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), address)
}

// linuxARPEntry reads /proc/net/arp directly; an entry with a real MAC
// means the kernel has seen the host recently.
func linuxARPEntry(address string) bool {
	data, err := os.ReadFile("/proc/net/arp")
	if err != nil {
		return false
	}

	for _, line := range strings.Split(string(data), "\n")[1:] {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		if fields[0] == address && fields[3] != "00:00:00:00:00:00" {
			return true
		}
	}

	return false
}

func reverseName(ctx context.Context, address string) string {
	names, err := net.DefaultResolver.LookupAddr(ctx, address)
	if err != nil || len(names) == 0 {
		return ""
	}

	return strings.TrimSuffix(names[0], ".")
}

func lessAddress(a, b string) bool {
	ipA := net.ParseIP(a)
	ipB := net.ParseIP(b)
	if ipA == nil || ipB == nil {
		return a < b
	}

	return string(ipA.To16()) < string(ipB.To16())
}
