package chain

import (
	"context"
	"errors"
	"fmt"

	envstore "github.com/ofckit/ofc/internal/adapters/secrets/env"
	filestore "github.com/ofckit/ofc/internal/adapters/secrets/file"
	"github.com/ofckit/ofc/internal/ports"
)

// Store consults a primary credential backend and falls back to a second
// one when the primary fails. The usual wiring reads the environment
// first and a credentials directory second, so an exported token always
// wins over a stored one.
type Store struct {
	primary  ports.CredentialStore
	fallback ports.CredentialStore
}

var _ ports.CredentialStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary credential store is nil")
	errNilFallbackStore = errors.New("fallback credential store is nil")
)

func NewStore(primary ports.CredentialStore, fallback ports.CredentialStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

// NewEnvFirstWithFileFallback builds the default chain: environment
// variables under envPrefix, then per-credential files under fileRoot.
func NewEnvFirstWithFileFallback(envPrefix string, fileRoot string) (*Store, error) {
	return NewStore(envstore.NewStore(envPrefix), filestore.NewStore(fileRoot))
}

func (s *Store) Get(ctx context.Context, name string) (string, error) {
	value, err := s.primary.Get(ctx, name)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, name)
	if fallbackErr == nil {
		return fallbackValue, nil
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

func (s *Store) Put(ctx context.Context, name string, value string) error {
	err := s.primary.Put(ctx, name, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, name, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.primary.Delete(ctx, name)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, name)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
