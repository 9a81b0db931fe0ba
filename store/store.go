// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is a transactional object store.
//
// Committed state is held in memory as JSON records and published atomically
// at each commit. When a [Persister] is configured, every commit is saved
// before it becomes visible; a failed save leaves the store unchanged.
//
// Sessions use optimistic concurrency: any number of sessions may be open at
// once, and a writable session fails to commit with [ErrConflict] if another
// commit happened after it began.
type Store struct {
	mu        sync.RWMutex
	records   Records
	version   uint64
	persister Persister
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPersister loads the initial state from p and saves every commit to it.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates a store, loading its state from the configured persister.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	s := &Store{
		records: Records{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persister == nil {
		return s, nil
	}
	snapshot, err := s.persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}
	if snapshot.Records != nil {
		s.records = snapshot.Records.clone()
	}
	s.version = snapshot.Version
	s.logger.Debug("store loaded",
		zap.Uint64("version", s.version),
		zap.Int("records", s.records.Len()))
	return s, nil
}

// Version returns the number of commits applied to the store.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Export returns a copy of the committed state.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Version: s.version, Records: s.records.clone()}
}

// BeginRead opens a read-only session over the current committed state.
// Every mutation through the session fails with [ErrReadOnly].
func (s *Store) BeginRead(ctx context.Context) (*Session, error) {
	return s.begin(ctx, false)
}

// BeginWrite opens a writable session over a private copy of the current
// committed state. Changes become visible only through [Session.Commit].
func (s *Store) BeginWrite(ctx context.Context) (*Session, error) {
	return s.begin(ctx, true)
}

func (s *Store) begin(ctx context.Context, writable bool) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	records, version := s.records, s.version
	s.mu.RUnlock()

	sess := &Session{
		id:       uuid.New(),
		ctx:      ctx,
		store:    s,
		writable: writable,
		base:     version,
		records:  records,
	}
	if writable {
		// Top-level map is private; per-type maps are copied on first write.
		sess.records = make(Records, len(records))
		for typ, byKey := range records {
			sess.records[typ] = byKey
		}
		sess.owned = make(map[string]bool)
		sess.managed = make(map[recordKey]Object)
	}
	return sess, nil
}

// commit publishes the working state of sess.
func (s *Store) commit(sess *Session, records Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != sess.base {
		return fmt.Errorf("%w: began at version %d, store at %d", ErrConflict, sess.base, s.version)
	}
	next := Snapshot{Version: s.version + 1, Records: records}
	if s.persister != nil {
		if err := s.persister.Save(sess.ctx, next); err != nil {
			s.logger.Warn("persist snapshot failed",
				zap.Stringer("session", sess.id),
				zap.Uint64("version", next.Version),
				zap.Error(err))
			return fmt.Errorf("store: persist snapshot: %w", err)
		}
	}
	s.records = records
	s.version = next.Version
	return nil
}

// Close releases the persister if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.persister.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
