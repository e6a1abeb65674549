package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
)

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS kv_pairs (name TEXT PRIMARY KEY, value TEXT NOT NULL)`
	getQuery         = `SELECT value FROM kv_pairs WHERE name = ?`
	upsertQuery      = `INSERT INTO kv_pairs (name, value) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET value = excluded.value`
	deleteQuery      = `DELETE FROM kv_pairs WHERE name = ?`
)

// Store is a core.KVStore over a single kv_pairs table.
// It works with any sqlx driver that supports upserts (postgres, sqlite3).
type Store struct {
	db *sqlx.DB
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

// Open connects to the database and creates the kv_pairs table if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", driver)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "pinging %s database", driver)
	}

	s := New(db)
	if err = s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableQuery); err != nil {
		return errors.Wrap(err, "creating kv_pairs table")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var val string
	if err := s.db.GetContext(ctx, &val, s.db.Rebind(getQuery), key); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrap(err, "selecting value")
	}
	return []byte(val), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(upsertQuery), key, string(value)); err != nil {
		return errors.Wrap(err, "upserting value")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(deleteQuery), key); err != nil {
		return errors.Wrap(err, "deleting value")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
