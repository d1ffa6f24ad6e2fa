package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/retry"
)

func testApplier(provider *fakeProvider, concurrency int) *Applier {
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}
	return NewApplier(provider, policy, ApplierConfig{
		PresentText:  officeStatus,
		PresentEmoji: ":office:",
		Concurrency:  concurrency,
	})
}

func TestApplySetPresentWritesConfiguredStatus(t *testing.T) {
	provider := newFakeProvider()
	applier := testApplier(provider, 1)

	result := applier.Apply(context.Background(), []domain.Action{
		{Person: alice.ID, Kind: domain.ActionSetPresent},
	})

	assert.Equal(t, ApplyResult{Succeeded: 1}, result)
	assert.Equal(t, domain.RemoteStatus{Text: officeStatus, Emoji: ":office:"}, provider.status(alice.ID))
}

func TestApplyClearAbsentWritesEmptyStatus(t *testing.T) {
	provider := newFakeProvider()
	provider.statuses[alice.ID] = domain.RemoteStatus{Text: officeStatus, Emoji: ":office:"}
	applier := testApplier(provider, 1)

	result := applier.Apply(context.Background(), []domain.Action{
		{Person: alice.ID, Kind: domain.ActionClearAbsent},
	})

	assert.Equal(t, 1, result.Succeeded)
	assert.True(t, provider.status(alice.ID).IsClear())
}

func TestApplySkipBreakWritesNothing(t *testing.T) {
	provider := newFakeProvider()
	provider.statuses[alice.ID] = domain.RemoteStatus{Text: "Lunch break"}
	applier := testApplier(provider, 1)

	result := applier.Apply(context.Background(), []domain.Action{
		{Person: alice.ID, Kind: domain.ActionSkipBreak, Reason: "on break"},
	})

	assert.Equal(t, ApplyResult{Skipped: 1}, result)
	assert.Zero(t, provider.writes(alice.ID))
	assert.Equal(t, "Lunch break", provider.status(alice.ID).Text)
}

func TestApplyRetriesTransientFailureThenSucceeds(t *testing.T) {
	provider := newFakeProvider()
	provider.setErrs[alice.ID] = []error{domain.ErrTransient, domain.ErrRateLimited, nil}
	applier := testApplier(provider, 1)

	result := applier.Apply(context.Background(), []domain.Action{
		{Person: alice.ID, Kind: domain.ActionSetPresent},
	})

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 3, provider.writes(alice.ID))
}

func TestApplyPartialFailureDoesNotBlockOthers(t *testing.T) {
	// Scenario: Bob's write keeps failing past the retry budget while
	// Alice's succeeds in the same cycle.
	provider := newFakeProvider()
	provider.setErrs[bob.ID] = []error{domain.ErrTransient, domain.ErrTransient, domain.ErrTransient}
	applier := testApplier(provider, 1)

	result := applier.Apply(context.Background(), []domain.Action{
		{Person: alice.ID, Kind: domain.ActionSetPresent},
		{Person: bob.ID, Kind: domain.ActionSetPresent},
	})

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, bob.ID, result.Errors[0].Person)
	assert.ErrorIs(t, result.Errors[0].Err, domain.ErrTransient)
	assert.Equal(t, domain.RemoteStatus{Text: officeStatus, Emoji: ":office:"}, provider.status(alice.ID))
}

func TestApplyDoesNotRetryForbidden(t *testing.T) {
	provider := newFakeProvider()
	provider.setErrs[alice.ID] = []error{domain.ErrForbidden, nil}
	applier := testApplier(provider, 1)

	result := applier.Apply(context.Background(), []domain.Action{
		{Person: alice.ID, Kind: domain.ActionSetPresent},
	})

	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0].Err, domain.ErrForbidden)
	assert.Equal(t, 1, provider.writes(alice.ID))
}

func TestApplyDoesNotRetryUnknownPerson(t *testing.T) {
	provider := newFakeProvider()
	provider.setErrs[alice.ID] = []error{domain.ErrPersonNotFound, nil}
	applier := testApplier(provider, 1)

	result := applier.Apply(context.Background(), []domain.Action{
		{Person: alice.ID, Kind: domain.ActionSetPresent},
	})

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, provider.writes(alice.ID))
}

func TestApplyConcurrentWritesAggregateDeterministically(t *testing.T) {
	provider := newFakeProvider()
	provider.setErrs[alice.ID] = []error{domain.ErrTransient, domain.ErrTransient, domain.ErrTransient}
	provider.setErrs[bob.ID] = []error{domain.ErrForbidden}
	applier := testApplier(provider, 4)

	actions := []domain.Action{
		{Person: "U000CAROL1", Kind: domain.ActionSetPresent},
		{Person: bob.ID, Kind: domain.ActionSetPresent},
		{Person: alice.ID, Kind: domain.ActionClearAbsent},
		{Person: "U0000DAVE1", Kind: domain.ActionSkipBreak},
	}

	result := applier.Apply(context.Background(), actions)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 2)
	// Sorted by person id regardless of completion order.
	assert.Equal(t, bob.ID, result.Errors[0].Person)
	assert.Equal(t, alice.ID, result.Errors[1].Person)
}

func TestApplyCapsReportedErrors(t *testing.T) {
	// A revoked token fails every write in the cycle; the failure count
	// stays exact while the error list stays readable.
	provider := newFakeProvider()
	actions := make([]domain.Action, 0, 15)
	for i := 0; i < 15; i++ {
		id := domain.PersonID(fmt.Sprintf("U0000%05d", i))
		provider.setErrs[id] = []error{domain.ErrForbidden}
		actions = append(actions, domain.Action{Person: id, Kind: domain.ActionSetPresent})
	}

	result := testApplier(provider, 4).Apply(context.Background(), actions)

	assert.Equal(t, 15, result.Failed)
	require.Len(t, result.Errors, maxReportedErrors)
	assert.Equal(t, domain.PersonID("U000000000"), result.Errors[0].Person)
	assert.Equal(t, domain.PersonID("U000000009"), result.Errors[maxReportedErrors-1].Person)
}

func TestApplyEmptyActionListIsNoop(t *testing.T) {
	applier := testApplier(newFakeProvider(), 1)
	assert.Equal(t, ApplyResult{}, applier.Apply(context.Background(), nil))
}
