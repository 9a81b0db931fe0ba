// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package postgres persists store snapshots to PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"code.hybscloud.com/storeio/store"
	"code.hybscloud.com/storeio/store/internal/sqlsnap"
)

const (
	driver = "pgx"
	// DefaultDSN is used when Open is given an empty DSN.
	DefaultDSN = "postgres://localhost/storeio?sslmode=disable"
)

var dialect = sqlsnap.Dialect{
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS records (
			bucket TEXT PRIMARY KEY,
			payload JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			name TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
	},
	InsertBucket: `INSERT INTO records(bucket, payload) VALUES($1, $2)`,
	PutVersion:   `INSERT INTO meta(name, value) VALUES('version', $1) ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
}

// sqlOpen is replaced in tests.
var sqlOpen = sql.Open

// Persister is a [store.Persister] backed by PostgreSQL.
type Persister struct {
	db *sql.DB
}

var _ store.Persister = (*Persister)(nil)

// Open connects to dsn, pings the server and ensures the schema.
func Open(ctx context.Context, dsn string) (*Persister, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if err := sqlsnap.EnsureSchema(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return &Persister{db: db}, nil
}

// Load implements [store.Persister].
func (p *Persister) Load(ctx context.Context) (store.Snapshot, error) {
	snap, err := sqlsnap.Load(ctx, p.db)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("postgres: %w", err)
	}
	return snap, nil
}

// Save implements [store.Persister].
func (p *Persister) Save(ctx context.Context, snap store.Snapshot) error {
	if err := sqlsnap.Save(ctx, p.db, dialect, snap); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Persister) Close() error { return p.db.Close() }

// DB exposes the underlying database for tests and tooling.
func (p *Persister) DB() *sql.DB { return p.db }
