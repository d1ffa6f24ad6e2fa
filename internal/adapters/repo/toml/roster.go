package toml

import (
	"context"
	"fmt"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

const (
	rosterPathKey     = "roster.path"
	rosterDefaultFile = "roster.toml"
	rosterVersion     = 1
)

// RosterSource reads the office roster file. The file is operator
// maintained, so loading validates every entry and rejects the whole
// roster on the first problem instead of silently skipping it.
type RosterSource struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.RosterSource = (*RosterSource)(nil)

func NewRosterSource(cfg *viper.Viper) (*RosterSource, error) {
	path, err := resolvePath(cfg, rosterPathKey, rosterDefaultFile)
	if err != nil {
		return nil, err
	}

	return &RosterSource{path: path, mu: lockForPath(path)}, nil
}

func (r *RosterSource) Path() string {
	return r.path
}

type rosterSchema struct {
	Version int            `toml:"version"`
	People  []personSchema `toml:"people"`
}

type personSchema struct {
	ID      string `toml:"id"`
	Address string `toml:"address"`
	Name    string `toml:"name"`
}

func (r *RosterSource) Load(ctx context.Context) ([]domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists, err := readFileIfExists(r.path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("roster file %s does not exist", r.path)
	}

	var file rosterSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode roster file: %w", err)
	}
	if file.Version != 0 && file.Version != rosterVersion {
		return nil, fmt.Errorf("roster file version %d is not supported", file.Version)
	}

	people := make([]domain.Person, 0, len(file.People))
	for _, entry := range file.People {
		people = append(people, domain.Person{
			ID:          domain.PersonID(entry.ID),
			Address:     entry.Address,
			DisplayName: entry.Name,
		})
	}

	if err := domain.ValidateRoster(people); err != nil {
		return nil, fmt.Errorf("roster file %s: %w", r.path, err)
	}

	return people, nil
}
