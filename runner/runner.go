// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runner executes storeio computations against a store.
//
// The effect tag of a computation selects the session it gets: Read
// computations run in a read-only session, Write computations in a writable
// session that is committed on success and rolled back on failure. Because
// computations are values, a write that loses a commit race is simply run
// again against a fresh session.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"code.hybscloud.com/storeio"
	"code.hybscloud.com/storeio/store"
)

const (
	// DefaultMaxRetries bounds the re-executions of a conflicting write.
	DefaultMaxRetries = 5
	// DefaultBackoff is the base of the Fibonacci backoff between retries.
	DefaultBackoff = 5 * time.Millisecond
)

// Runner opens sessions on a store and executes computations in them.
// A Runner is safe for concurrent use.
type Runner struct {
	store      *store.Store
	logger     *zap.Logger
	metrics    *metrics
	maxRetries uint64
	backoff    time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics registers the runner's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Runner) { r.metrics = newMetrics(reg) }
}

// WithMaxRetries sets how many times a conflicting write is re-executed.
// Zero disables retries.
func WithMaxRetries(n uint64) Option {
	return func(r *Runner) { r.maxRetries = n }
}

// WithBackoff sets the base delay between retries. Non-positive values are ignored.
func WithBackoff(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.backoff = d
		}
	}
}

// New returns a Runner over st.
func New(st *store.Store, opts ...Option) *Runner {
	r := &Runner{
		store:      st,
		logger:     zap.NewNop(),
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = newMetrics(nil)
	}
	return r
}

// Store returns the store the runner executes against.
func (r *Runner) Store() *store.Store { return r.store }

// Read executes a read-only computation in a read-only session.
func Read[A any](ctx context.Context, r *Runner, m storeio.IO[storeio.Read, A]) (A, error) {
	return Exec(ctx, r, m)
}

// Write executes a computation in a writable session and commits it.
func Write[A any](ctx context.Context, r *Runner, m storeio.IO[storeio.Write, A]) (A, error) {
	return Exec(ctx, r, m)
}

// Exec executes m in a session whose writability matches m's effect tag.
func Exec[E storeio.Effect, A any](ctx context.Context, r *Runner, m storeio.IO[E, A]) (A, error) {
	start := time.Now()
	var (
		result A
		err    error
	)
	if m.IsWrite() {
		result, err = execWrite(ctx, r, m)
	} else {
		result, err = attempt(ctx, r, m, false)
	}
	r.metrics.observe(storeio.EffectOf[E](), err, time.Since(start))
	return result, err
}

// execWrite runs m in writable sessions until a commit succeeds, a failure
// other than a conflict occurs, or the retries are spent.
func execWrite[E storeio.Effect, A any](ctx context.Context, r *Runner, m storeio.IO[E, A]) (A, error) {
	var result A
	if r.maxRetries == 0 {
		return attempt(ctx, r, m, true)
	}
	b := retry.WithMaxRetries(r.maxRetries, retry.NewFibonacci(r.backoff))
	n := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		// counted when the re-execution starts, so giving up adds nothing
		if n > 0 {
			r.metrics.retries.Inc()
			r.logger.Debug("retrying write", zap.Int("attempt", n+1))
		}
		n++
		a, err := attempt(ctx, r, m, true)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				r.logger.Debug("write conflict", zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		var zero A
		return zero, err
	}
	return result, nil
}

// attempt acquires a session, runs m in it, and releases it: committing a
// successful write, discarding everything else.
func attempt[E storeio.Effect, A any](ctx context.Context, r *Runner, m storeio.IO[E, A], writable bool) (A, error) {
	var zero A
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	var (
		sess *store.Session
		err  error
	)
	if writable {
		sess, err = r.store.BeginWrite(ctx)
	} else {
		sess, err = r.store.BeginRead(ctx)
	}
	if err != nil {
		return zero, err
	}
	defer sess.Close()

	log := r.logger.With(
		zap.Stringer("session", sess.ID()),
		zap.Bool("writable", writable),
		zap.Uint64("base", sess.Base()))
	log.Debug("session opened")

	a, err := storeio.Run(m, sess)
	if err != nil {
		_ = sess.Rollback()
		log.Warn("computation failed, session rolled back", zap.Error(err))
		return zero, &Error{Session: sess.ID().String(), Err: err}
	}
	if writable {
		if err := sess.Commit(); err != nil {
			log.Debug("commit failed", zap.Error(err))
			return zero, &Error{Session: sess.ID().String(), Err: err}
		}
		log.Debug("session committed", zap.Uint64("version", r.store.Version()))
	}
	return a, nil
}
