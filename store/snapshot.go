// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
)

// Records maps object type → primary key → JSON payload.
type Records map[string]map[string]json.RawMessage

// Snapshot is the committed state of a store at one version.
type Snapshot struct {
	Version uint64  `json:"version"`
	Records Records `json:"records"`
}

// Persister loads and saves store snapshots.
//
// Save receives maps shared with the live store and must not modify them.
// Save is called with the store's commit lock held; a Save failure aborts
// the commit.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// Record is one stored object in untyped form.
type Record struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Types returns the object types that hold at least one record, sorted.
func (r Records) Types() []string {
	out := make([]string, 0, len(r))
	for typ, byKey := range r {
		if len(byKey) > 0 {
			out = append(out, typ)
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the total number of records.
func (r Records) Len() int {
	n := 0
	for _, byKey := range r {
		n += len(byKey)
	}
	return n
}

// clone copies the map structure. Payloads are shared: they are replaced,
// never modified in place.
func (r Records) clone() Records {
	out := make(Records, len(r))
	for typ, byKey := range r {
		if len(byKey) == 0 {
			continue
		}
		out[typ] = maps.Clone(byKey)
	}
	return out
}
