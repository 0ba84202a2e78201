package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/storage"
	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ storage.Repo = (*Repo)(nil)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Repo persists session keys in a single-table SQLite database file.
type Repo struct {
	db *sql.DB
}

// Open creates (if needed) and opens the database at path.
func Open(ctx context.Context, path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, pkgerrors.Wrap(err, "create storage directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open sqlite")
	}
	// One writer at a time keeps SQLITE_BUSY out of concurrent refresh/logout writes
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, pkgerrors.Wrapf(err, "init sqlite (%s)", stmt)
		}
	}

	return &Repo{db: db}, nil
}

func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", pkgerrors.Wrapf(err, "get %q", key)
	}
	return value, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	return r.SetMulti(ctx, map[string]string{key: value})
}

func (r *Repo) SetMulti(ctx context.Context, values map[string]string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for k, v := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kv (key, value) VALUES (?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
				return pkgerrors.Wrapf(err, "set %q", k)
			}
		}
		return nil
	})
}

func (r *Repo) Delete(ctx context.Context, keys ...string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k); err != nil {
				return pkgerrors.Wrapf(err, "delete %q", k)
			}
		}
		return nil
	})
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return pkgerrors.Wrap(tx.Commit(), "commit transaction")
}
