package storage

import "context"

// Repo is the persistent key-value storage that backs the session.
// Get returns errors.ErrNotFound for a missing key. SetMulti and Delete are
// atomic: either every key is written/removed or none is.
type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMulti(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
