package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/storage"
	goredis "github.com/redis/go-redis/v9"
)

var _ storage.Repo = (*Repo)(nil)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Prepended to every key, e.g. "enrollctl:"
}

// Repo stores session keys in Redis so several shells on one host can share a session.
type Repo struct {
	client *goredis.Client
	prefix string
}

// New connects and pings the server.
func New(ctx context.Context, opts Options) (*Repo, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", errors.ErrStorageUnavailable, err)
	}

	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) *Repo {
	return &Repo{client: client, prefix: prefix}
}

func (r *Repo) key(k string) string {
	return r.prefix + k
}

func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == goredis.Nil {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *Repo) SetMulti(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, len(values)*2)
	keys := make([]string, 0, len(values))
	for k, v := range values {
		pairs = append(pairs, r.key(k), v)
		keys = append(keys, k)
	}
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.MSet(ctx, pairs...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis mset %q: %w", keys, err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", keys, err)
	}
	return nil
}

func (r *Repo) Close() error {
	return r.client.Close()
}
