package ports

import (
	"context"

	"github.com/ofckit/ofc/internal/domain"
)

// RosterSource loads the static person → address mapping. Loading must
// fail on the first invalid entry rather than skip it.
type RosterSource interface {
	Load(ctx context.Context) ([]domain.Person, error)
}
