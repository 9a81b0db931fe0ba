// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio

import "code.hybscloud.com/storeio/store"

// Session is the live store context a computation executes against.
// It is supplied by the runner at execution time and is never captured by a
// composed computation.
type Session = *store.Session

// IO is a deferred, possibly failing computation over a store [Session].
// IO[E, A] produces a value of type A; E records at the type level whether
// the computation may mutate the store.
//
// An IO value is immutable. Composing, copying, or storing it has no side
// effects; only [Run] executes the wrapped function. The zero IO fails with
// [ErrNilComputation] when run.
type IO[E Effect, A any] struct {
	run func(Session) (A, error)
}

// ReadIO is a computation that only reads from the store.
type ReadIO[A any] = IO[Read, A]

// WriteIO is a computation that may write to the store.
type WriteIO[A any] = IO[Write, A]

// New wraps a deferred function as a computation tagged E.
// Leaf constructors that call into the store use New; mutating calls must be
// tagged Write. A nil f yields a computation failing with [ErrNilComputation].
func New[E Effect, A any](f func(Session) (A, error)) IO[E, A] {
	return IO[E, A]{run: f}
}

// Return lifts a pure value into a computation that ignores the session.
func Return[E Effect, A any](a A) IO[E, A] {
	return IO[E, A]{run: func(Session) (A, error) {
		return a, nil
	}}
}

// Fail returns a computation that always fails with err, ignoring the session.
// It is used to short-circuit a chain deliberately, for example on a
// validation failure before the store is touched. A nil err is replaced by
// [ErrNilFailure].
func Fail[E Effect, A any](err error) IO[E, A] {
	if err == nil {
		err = ErrNilFailure
	}
	return IO[E, A]{run: func(Session) (A, error) {
		var zero A
		return zero, err
	}}
}

// IsRead reports whether m is tagged Read.
func (m IO[E, A]) IsRead() bool {
	return !isWriteTag[E]()
}

// IsWrite reports whether m is tagged Write.
func (m IO[E, A]) IsWrite() bool {
	return isWriteTag[E]()
}

// exec runs the deferred function without session bookkeeping.
// Composition operators call exec so that a chain enters the session once.
func (m IO[E, A]) exec(s Session) (A, error) {
	if m.run == nil {
		var zero A
		return zero, ErrNilComputation
	}
	return m.run(s)
}
