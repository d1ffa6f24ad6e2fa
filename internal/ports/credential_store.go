package ports

import "context"

// CredentialStore holds provider tokens by name. Get returns
// domain.ErrCredentialNotFound when the named credential is absent.
type CredentialStore interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name string, value string) error
	Delete(ctx context.Context, name string) error
}
