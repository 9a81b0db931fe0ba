// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sqlsnap stores snapshots in a SQL database through database/sql:
// one row per object type in a records table holding that type's records as
// a JSON object, and the snapshot version in a meta table.
package sqlsnap

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"code.hybscloud.com/storeio/store"
)

// Dialect holds the driver-specific statements.
type Dialect struct {
	// Schema creates the records and meta tables when missing.
	Schema []string
	// InsertBucket takes (bucket, payload).
	InsertBucket string
	// PutVersion takes (version) and upserts the version row.
	PutVersion string
}

// EnsureSchema applies d.Schema.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Load reads the stored snapshot. An empty database yields an empty snapshot.
func Load(ctx context.Context, db *sql.DB) (store.Snapshot, error) {
	var snap store.Snapshot
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE name = 'version'`).Scan(&snap.Version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, fmt.Errorf("select version: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM records`)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return store.Snapshot{}, fmt.Errorf("scan records: %w", err)
		}
		var byKey map[string]json.RawMessage
		if err := json.Unmarshal(payload, &byKey); err != nil {
			return store.Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
		if len(byKey) == 0 {
			continue
		}
		if snap.Records == nil {
			snap.Records = store.Records{}
		}
		snap.Records[bucket] = byKey
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, fmt.Errorf("iterate records: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot with snap in one transaction.
func Save(ctx context.Context, db *sql.DB, d Dialect, snap store.Snapshot) (retErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for _, bucket := range snap.Records.Types() {
		data, err := json.Marshal(snap.Records[bucket])
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.ExecContext(ctx, d.InsertBucket, bucket, data); err != nil {
			return fmt.Errorf("insert %s: %w", bucket, err)
		}
	}
	if _, err := tx.ExecContext(ctx, d.PutVersion, int64(snap.Version)); err != nil {
		return fmt.Errorf("put version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
