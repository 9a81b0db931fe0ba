// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio

// AsWrite widens a Read computation to Write.
// The result runs the same deferred function and yields the same result or
// failure; only the tag differs. There is no conversion in the other
// direction.
func AsWrite[A any](m IO[Read, A]) IO[Write, A] {
	return IO[Write, A]{run: m.run}
}

// Modify runs m and applies f to the entity it yields, in place.
// The returned computation yields the same pointer, now mutated.
//
// Modify always returns a Write computation: a Read input is widened as if
// by AsWrite first. If m yields a nil pointer, the computation fails with
// [ErrNilEntity] and f is not invoked.
//
// When the entity is a managed object of a writable session, the mutation is
// persisted when the session commits. Mutating an entity that is shared with
// another goroutine or session is the caller's responsibility.
func Modify[E Effect, T any](m IO[E, *T], f func(*T)) IO[Write, *T] {
	return IO[Write, *T]{run: func(s Session) (*T, error) {
		v, err := m.exec(s)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, ErrNilEntity
		}
		f(v)
		return v, nil
	}}
}

// ModifyErr is Modify with a fallible mutation.
// A failure from f is returned and the entity is not yielded; f may have
// partially mutated it, which a rollback of the session discards.
func ModifyErr[E Effect, T any](m IO[E, *T], f func(*T) error) IO[Write, *T] {
	return IO[Write, *T]{run: func(s Session) (*T, error) {
		v, err := m.exec(s)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, ErrNilEntity
		}
		if err := f(v); err != nil {
			return nil, err
		}
		return v, nil
	}}
}
