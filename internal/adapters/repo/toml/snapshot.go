package toml

import (
	"context"
	"fmt"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

const (
	snapshotPathKey     = "snapshot.path"
	snapshotDefaultFile = "snapshot.toml"
	snapshotVersion     = 1
)

// SnapshotStore persists the last completed cycle's presence snapshot.
// A missing file is a valid first run and loads as an empty snapshot;
// saving always replaces the file atomically.
type SnapshotStore struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore(cfg *viper.Viper) (*SnapshotStore, error) {
	path, err := resolvePath(cfg, snapshotPathKey, snapshotDefaultFile)
	if err != nil {
		return nil, err
	}

	return &SnapshotStore{path: path, mu: lockForPath(path)}, nil
}

func (s *SnapshotStore) Path() string {
	return s.path
}

type snapshotSchema struct {
	Version int      `toml:"version"`
	TakenAt string   `toml:"taken_at"`
	Present []string `toml:"present"`
	Known   []string `toml:"known"`
}

func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists, err := readFileIfExists(s.path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	if !exists {
		return domain.Snapshot{}, nil
	}

	var file snapshotSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot file: %w", err)
	}
	if file.Version != 0 && file.Version != snapshotVersion {
		return domain.Snapshot{}, fmt.Errorf("snapshot file version %d is not supported", file.Version)
	}

	snapshot, err := fromSnapshotSchema(file)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot file: %w", err)
	}

	return snapshot, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(toSnapshotSchema(snapshot.Normalize()))
	if err != nil {
		return fmt.Errorf("encode snapshot file: %w", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}

func toSnapshotSchema(snapshot domain.Snapshot) snapshotSchema {
	file := snapshotSchema{
		Version: snapshotVersion,
		Present: make([]string, 0, len(snapshot.Present)),
		Known:   make([]string, 0, len(snapshot.Known)),
	}
	if !snapshot.TakenAt.IsZero() {
		file.TakenAt = snapshot.TakenAt.UTC().Format(time.RFC3339)
	}
	for _, id := range snapshot.Present {
		file.Present = append(file.Present, string(id))
	}
	for _, id := range snapshot.Known {
		file.Known = append(file.Known, string(id))
	}

	return file
}

func fromSnapshotSchema(file snapshotSchema) (domain.Snapshot, error) {
	snapshot := domain.Snapshot{
		Present: make([]domain.PersonID, 0, len(file.Present)),
		Known:   make([]domain.PersonID, 0, len(file.Known)),
	}
	if file.TakenAt != "" {
		parsed, err := time.Parse(time.RFC3339, file.TakenAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("parse taken_at: %w", err)
		}
		snapshot.TakenAt = parsed
	}
	for _, id := range file.Present {
		snapshot.Present = append(snapshot.Present, domain.PersonID(id))
	}
	for _, id := range file.Known {
		snapshot.Known = append(snapshot.Known, domain.PersonID(id))
	}

	return snapshot.Normalize(), nil
}
