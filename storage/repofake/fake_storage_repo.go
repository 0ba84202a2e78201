package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/storage"
)

var _ storage.Repo = (*FakeStorageRepo)(nil)

// FakeStorageRepo is an in-memory storage.Repo. It is shared by tests and by
// shells that do not need the session to outlive the process.
type FakeStorageRepo struct {
	values   map[string]string
	writeErr error // returned by every write while set
	lock     sync.RWMutex
}

func NewFakeStorageRepo() *FakeStorageRepo {
	return &FakeStorageRepo{
		values: make(map[string]string),
	}
}

// FailWrites makes every subsequent write return err; nil restores normal behaviour.
func (r *FakeStorageRepo) FailWrites(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.writeErr = err
}

func (r *FakeStorageRepo) Get(_ context.Context, key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *FakeStorageRepo) Set(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.values[key] = value
	return nil
}

func (r *FakeStorageRepo) SetMulti(_ context.Context, values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *FakeStorageRepo) Delete(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// Len returns the number of stored keys
func (r *FakeStorageRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.values)
}

func (r *FakeStorageRepo) Close() error {
	return nil
}
