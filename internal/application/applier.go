package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
	"github.com/ofckit/ofc/internal/retry"
)

// ApplierConfig carries the status payloads and the write concurrency
// cap. Concurrency below 1 means sequential.
type ApplierConfig struct {
	PresentText  string
	PresentEmoji string
	Concurrency  int
}

// maxReportedErrors bounds the per-person error lists kept for
// display. The failure counts always cover every failure.
const maxReportedErrors = 10

type ApplyError struct {
	Person domain.PersonID
	Err    error
}

type ApplyResult struct {
	Succeeded int
	Failed    int
	Skipped   int
	Errors    []ApplyError
}

// Applier executes a decided action list against the chat provider.
// Each write retries independently under the policy; one person's
// failure never blocks another's update.
type Applier struct {
	provider ports.StatusProvider
	policy   retry.Policy
	cfg      ApplierConfig
}

func NewApplier(provider ports.StatusProvider, policy retry.Policy, cfg ApplierConfig) *Applier {
	return &Applier{
		provider: provider,
		policy:   policy,
		cfg:      cfg,
	}
}

// Apply runs every action and aggregates the outcome. SkipBreak actions
// write nothing. Errors are sorted by person id so the result is stable
// regardless of worker scheduling, and truncated past maxReportedErrors
// while Failed keeps the full count.
func (a *Applier) Apply(ctx context.Context, actions []domain.Action) ApplyResult {
	workers := a.cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(actions) {
		workers = len(actions)
	}

	var result ApplyResult
	if len(actions) == 0 {
		return result
	}

	jobs := make(chan domain.Action)
	outcomes := make(chan ApplyError, len(actions))
	skips := make(chan domain.PersonID, len(actions))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for action := range jobs {
				if action.Kind == domain.ActionSkipBreak {
					skips <- action.Person
					continue
				}
				outcomes <- ApplyError{Person: action.Person, Err: a.applyOne(ctx, action)}
			}
		}()
	}

	for _, action := range actions {
		jobs <- action
	}
	close(jobs)
	wg.Wait()
	close(outcomes)
	close(skips)

	for range skips {
		result.Skipped++
	}
	for outcome := range outcomes {
		if outcome.Err == nil {
			result.Succeeded++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, outcome)
	}

	slices.SortFunc(result.Errors, func(a, b ApplyError) int {
		switch {
		case a.Person < b.Person:
			return -1
		case a.Person > b.Person:
			return 1
		default:
			return 0
		}
	})
	if len(result.Errors) > maxReportedErrors {
		result.Errors = result.Errors[:maxReportedErrors]
	}

	return result
}

func (a *Applier) applyOne(ctx context.Context, action domain.Action) error {
	var status domain.RemoteStatus
	switch action.Kind {
	case domain.ActionSetPresent:
		status = domain.RemoteStatus{Text: a.cfg.PresentText, Emoji: a.cfg.PresentEmoji}
	case domain.ActionClearAbsent:
		status = domain.RemoteStatus{}
	default:
		return fmt.Errorf("unsupported action kind %q", action.Kind)
	}

	err := retry.Do(ctx, a.policy, func(ctx context.Context) error {
		if err := a.provider.SetStatus(ctx, action.Person, status); err != nil {
			if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrPersonNotFound) {
				return retry.Permanent(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	return nil
}
