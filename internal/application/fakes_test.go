package application

import (
	"context"
	"sync"
	"time"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

// Small hand-rolled fakes covering the ports the application layer
// consumes.

type fakeProvider struct {
	mu       sync.Mutex
	statuses map[domain.PersonID]domain.RemoteStatus
	getErrs  map[domain.PersonID]error
	setErrs  map[domain.PersonID][]error
	getCalls map[domain.PersonID]int
	setCalls map[domain.PersonID]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		statuses: make(map[domain.PersonID]domain.RemoteStatus),
		getErrs:  make(map[domain.PersonID]error),
		setErrs:  make(map[domain.PersonID][]error),
		getCalls: make(map[domain.PersonID]int),
		setCalls: make(map[domain.PersonID]int),
	}
}

func (f *fakeProvider) GetStatus(_ context.Context, id domain.PersonID) (domain.RemoteStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls[id]++
	if err := f.getErrs[id]; err != nil {
		return domain.RemoteStatus{}, err
	}
	return f.statuses[id], nil
}

func (f *fakeProvider) SetStatus(_ context.Context, id domain.PersonID, status domain.RemoteStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setCalls[id]++
	if queue := f.setErrs[id]; len(queue) > 0 {
		err := queue[0]
		f.setErrs[id] = queue[1:]
		if err != nil {
			return err
		}
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeProvider) status(id domain.PersonID) domain.RemoteStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

func (f *fakeProvider) writes(id domain.PersonID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls[id]
}

type fakeScanner struct {
	hosts   []ports.Host
	err     error
	targets []string
}

func (f *fakeScanner) Scan(_ context.Context, hosts []string) ([]ports.Host, error) {
	f.targets = hosts
	if f.err != nil {
		return nil, f.err
	}
	return f.hosts, nil
}

type fakeRoster struct {
	people []domain.Person
	err    error
}

func (f *fakeRoster) Load(context.Context) ([]domain.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.people, nil
}

type fakeSnapshots struct {
	snapshot domain.Snapshot
	loadErr  error
	saveErr  error
	saved    []domain.Snapshot
}

func (f *fakeSnapshots) Load(context.Context) (domain.Snapshot, error) {
	if f.loadErr != nil {
		return domain.Snapshot{}, f.loadErr
	}
	return f.snapshot, nil
}

func (f *fakeSnapshots) Save(_ context.Context, snapshot domain.Snapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, snapshot)
	f.snapshot = snapshot
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
