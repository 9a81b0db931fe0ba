// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sqlite persists store snapshots to a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"code.hybscloud.com/storeio/store"
	"code.hybscloud.com/storeio/store/internal/sqlsnap"
)

// DefaultPath is used when Open is given an empty path.
const DefaultPath = "storeio.db"

var dialect = sqlsnap.Dialect{
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS records (
			bucket TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
	},
	InsertBucket: `INSERT INTO records(bucket, payload) VALUES(?, ?)`,
	PutVersion:   `INSERT INTO meta(name, value) VALUES('version', ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
}

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Persister is a [store.Persister] backed by a SQLite file.
type Persister struct {
	db   *sql.DB
	path string
}

var _ store.Persister = (*Persister)(nil)

// Open opens or creates the database at path and ensures its schema.
func Open(ctx context.Context, path string) (*Persister, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("sqlite: create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite admits a single writer.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if err := sqlsnap.EnsureSchema(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &Persister{db: db, path: path}, nil
}

// Load implements [store.Persister].
func (p *Persister) Load(ctx context.Context) (store.Snapshot, error) {
	snap, err := sqlsnap.Load(ctx, p.db)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("sqlite: %w", err)
	}
	return snap, nil
}

// Save implements [store.Persister].
func (p *Persister) Save(ctx context.Context, snap store.Snapshot) error {
	if err := sqlsnap.Save(ctx, p.db, dialect, snap); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// Close closes the database.
func (p *Persister) Close() error { return p.db.Close() }

// DB exposes the underlying database for tests and tooling.
func (p *Persister) DB() *sql.DB { return p.db }

// Path returns the database file path.
func (p *Persister) Path() string { return p.path }
