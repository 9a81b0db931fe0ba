// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
)

type recordKey struct {
	typ string
	key string
}

// Session is a live view of the store: read-only or writable.
//
// A Session is owned by one execution at a time (see [Session.Enter]) and
// is single-use: after Commit, Rollback, or Close every call fails with
// [ErrSessionClosed]. Objects obtained from a session must not be shared
// with other sessions or goroutines.
type Session struct {
	id       uuid.UUID
	ctx      context.Context
	store    *Store
	writable bool
	base     uint64
	records  Records
	owned    map[string]bool
	managed  map[recordKey]Object
	closed   atomic.Bool
	busy     atomic.Bool
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Writable reports whether the session accepts mutations.
func (s *Session) Writable() bool { return s.writable }

// Context returns the context the session was opened with.
func (s *Session) Context() context.Context { return s.ctx }

// Base returns the store version the session was opened at.
func (s *Session) Base() uint64 { return s.base }

// Closed reports whether the session has ended.
func (s *Session) Closed() bool { return s.closed.Load() }

// Enter claims the session for one execution.
// It fails with [ErrSessionClosed] on an ended session and with
// [ErrSessionBusy] while another execution holds it. The returned release
// function must be called exactly once.
func (s *Session) Enter() (release func(), err error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSessionBusy
	}
	return func() { s.busy.Store(false) }, nil
}

func (s *Session) checkOpen() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) checkWritable() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.writable {
		return ErrReadOnly
	}
	return nil
}

// table returns the records of typ for writing, copying them on first use.
func (s *Session) table(typ string) map[string]json.RawMessage {
	byKey := s.records[typ]
	switch {
	case byKey == nil:
		byKey = make(map[string]json.RawMessage)
	case !s.owned[typ]:
		byKey = maps.Clone(byKey)
	default:
		return byKey
	}
	s.records[typ] = byKey
	s.owned[typ] = true
	return byKey
}

// Types returns the object types that hold at least one record, sorted.
func (s *Session) Types() ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.records.Types(), nil
}

// Count returns the number of records of typ.
func (s *Session) Count(typ string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return len(s.records[typ]), nil
}

// Get returns the payload stored under (typ, key).
// A managed object is encoded in its current state.
func (s *Session) Get(typ, key string) (json.RawMessage, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}
	if obj, ok := s.managed[recordKey{typ, key}]; ok {
		payload, err := json.Marshal(obj)
		if err != nil {
			return nil, false, fmt.Errorf("store: encode %s/%s: %w", typ, key, err)
		}
		return payload, true, nil
	}
	payload, ok := s.records[typ][key]
	return payload, ok, nil
}

// List returns every record of typ, sorted by key.
func (s *Session) List(typ string) ([]Record, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	byKey := s.records[typ]
	keys := slices.Sorted(maps.Keys(byKey))
	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		payload, _, err := s.Get(typ, key)
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Type: typ, Key: key, Payload: payload})
	}
	return out, nil
}

// Put stores payload under (typ, key).
// Without update, an existing key fails with [ErrDuplicateKey].
func (s *Session) Put(typ, key string, payload json.RawMessage, update bool) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if typ == "" || key == "" {
		return fmt.Errorf("%w: empty type or key", ErrInvalidObject)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("%w: %s/%s: payload is not valid JSON", ErrInvalidObject, typ, key)
	}
	if _, exists := s.records[typ][key]; exists && !update {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateKey, typ, key)
	}
	s.table(typ)[key] = slices.Clone(payload)
	delete(s.managed, recordKey{typ, key})
	return nil
}

// Remove deletes the record under (typ, key).
// A missing record fails with [ErrNotFound].
func (s *Session) Remove(typ, key string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if _, exists := s.records[typ][key]; !exists {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, typ, key)
	}
	delete(s.table(typ), key)
	delete(s.managed, recordKey{typ, key})
	return nil
}

// Truncate deletes every record of typ.
func (s *Session) Truncate(typ string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	delete(s.records, typ)
	s.owned[typ] = true
	for k := range s.managed {
		if k.typ == typ {
			delete(s.managed, k)
		}
	}
	return nil
}

// Clear deletes every record of every type.
func (s *Session) Clear() error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	for typ := range s.records {
		delete(s.records, typ)
		s.owned[typ] = true
	}
	clear(s.managed)
	return nil
}

// Commit encodes managed objects and publishes the session's changes.
// A read-only session has nothing to publish and just ends. The session is
// closed whatever the outcome.
func (s *Session) Commit() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSessionClosed
	}
	if !s.writable {
		return nil
	}
	if err := s.flush(); err != nil {
		return err
	}
	return s.store.commit(s, s.records)
}

// Rollback discards the session's changes and ends it.
func (s *Session) Rollback() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSessionClosed
	}
	return nil
}

// Close ends the session, discarding uncommitted changes.
// Close on an ended session is a no-op.
func (s *Session) Close() error {
	s.closed.Store(true)
	return nil
}

// flush writes the current state of every managed object into its record.
func (s *Session) flush() error {
	for k, obj := range s.managed {
		if obj.PrimaryKey() != k.key {
			return fmt.Errorf("%w: %s/%s: primary key changed to %q", ErrInvalidObject, k.typ, k.key, obj.PrimaryKey())
		}
		payload, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("store: encode %s/%s: %w", k.typ, k.key, err)
		}
		s.table(k.typ)[k.key] = payload
	}
	return nil
}
