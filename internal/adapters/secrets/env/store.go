package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

// Store reads credentials from environment variables. A credential name
// maps to a variable by upper-casing it and prefixing it, so with the
// "OFC" prefix the name "slack-token" resolves to OFC_SLACK_TOKEN.
//
// The environment is read only from the process's point of view here:
// Put and Delete always fail so a chained fallback store takes over.
type Store struct {
	prefix string
}

var _ ports.CredentialStore = (*Store)(nil)

var errReadOnly = errors.New("environment credential store is read only")

func NewStore(prefix string) *Store {
	return &Store{prefix: strings.TrimSuffix(strings.ToUpper(prefix), "_")}
}

func (s *Store) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	variable, err := s.variableForName(name)
	if err != nil {
		return "", err
	}

	value := strings.TrimSpace(os.Getenv(variable))
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set: %w", variable, domain.ErrCredentialNotFound)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, name string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return errReadOnly
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return errReadOnly
}

func (s *Store) variableForName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("credential name is empty")
	}

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, trimmed)

	if s.prefix == "" {
		return sanitized, nil
	}

	return s.prefix + "_" + sanitized, nil
}
