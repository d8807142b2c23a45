package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dialect selects the SQL flavour used by SQLBackend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type sqlQueries struct {
	createTable string
	selectOne   string
	upsert      string
	deleteOne   string
}

var dialectQueries = map[Dialect]sqlQueries{
	DialectSQLite: {
		createTable: `CREATE TABLE IF NOT EXISTS kv_state (
			bucket TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		selectOne: `SELECT payload FROM kv_state WHERE bucket = ?`,
		upsert: `INSERT INTO kv_state (bucket, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		deleteOne: `DELETE FROM kv_state WHERE bucket = ?`,
	},
	DialectPostgres: {
		createTable: `CREATE TABLE IF NOT EXISTS kv_state (
			bucket TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		selectOne: `SELECT payload::text FROM kv_state WHERE bucket = $1`,
		upsert: `INSERT INTO kv_state (bucket, payload, updated_at) VALUES ($1, $2::jsonb, NOW())
			ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		deleteOne: `DELETE FROM kv_state WHERE bucket = $1`,
	},
}

// SQLBackend stores every key as one row of the kv_state table.
type SQLBackend struct {
	db *sqlx.DB
	q  sqlQueries
}

// NewSQLBackend ensures the state table exists and returns the backend.
func NewSQLBackend(ctx context.Context, db *sqlx.DB, dialect Dialect) (*SQLBackend, error) {
	q, ok := dialectQueries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, q.createTable); err != nil {
		return nil, fmt.Errorf("ensure kv_state table: %w", err)
	}
	return &SQLBackend{db: db, q: q}, nil
}

// Read implements Backend.
func (b *SQLBackend) Read(ctx context.Context, key string) ([]byte, error) {
	var payload string
	if err := b.db.GetContext(ctx, &payload, b.q.selectOne, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(payload), nil
}

// Write implements Backend.
func (b *SQLBackend) Write(ctx context.Context, key string, payload []byte) error {
	if _, err := b.db.ExecContext(ctx, b.q.upsert, key, string(payload)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete implements Backend. All keys are removed in one transaction.
func (b *SQLBackend) Delete(ctx context.Context, keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, key := range keys {
		if _, err = tx.ExecContext(ctx, b.q.deleteOne, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Close implements Backend.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}
