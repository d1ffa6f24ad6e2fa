package ports

import (
	"context"

	"github.com/ofckit/ofc/internal/domain"
)

// SnapshotStore persists the last completed cycle's presence snapshot.
// Load returns an empty snapshot when none has been persisted yet; Save
// must replace the stored snapshot atomically.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}
