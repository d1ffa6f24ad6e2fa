package ports

import (
	"context"

	"github.com/ofckit/ofc/internal/domain"
)

// StatusProvider is the chat platform's profile status surface. Errors
// wrap the domain taxonomy (domain.ErrRateLimited, domain.ErrForbidden,
// domain.ErrPersonNotFound, domain.ErrTransient) so callers can pick a
// retry policy per failure class.
type StatusProvider interface {
	GetStatus(ctx context.Context, id domain.PersonID) (domain.RemoteStatus, error)
	SetStatus(ctx context.Context, id domain.PersonID, status domain.RemoteStatus) error
}

// Identity answers who the configured token belongs to. Used by the
// token permission check.
type Identity interface {
	WhoAmI(ctx context.Context) (user domain.PersonID, team string, err error)
}
