// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio

// Composition over IO.
//
// The effect lattice has two elements, Read ⊑ Write. Sequencing two
// computations tags the result with the least upper bound of their tags.
// Go cannot compute that bound at the type level, so each row of the table
// is its own function, all sharing one runtime implementation:
//
//	first   continuation   function         result
//	Read    Read           Bind             Read
//	Read    Write          BindWrite        Write
//	Write   Read | Write   BindAfterWrite   Write
//	Write   Write          Bind             Write
//
// No function returns Read when any operand is Write.

// bind is the single runtime implementation behind every bind rule.
// The result tag E3 is fixed by the exported wrapper.
func bind[E1, E2, E3 Effect, A, B any](m IO[E1, A], f func(A) IO[E2, B]) IO[E3, B] {
	return IO[E3, B]{run: func(s Session) (B, error) {
		a, err := m.exec(s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a).exec(s)
	}}
}

// Bind sequences two computations with the same tag (monadic bind).
// It runs m, passes the result to f, and runs the computation f returns.
// If m fails, f is never invoked.
func Bind[E Effect, A, B any](m IO[E, A], f func(A) IO[E, B]) IO[E, B] {
	return bind[E, E, E](m, f)
}

// BindWrite sequences a read with a write-producing continuation.
// The result is a Write computation.
func BindWrite[A, B any](m IO[Read, A], f func(A) IO[Write, B]) IO[Write, B] {
	return bind[Read, Write, Write](m, f)
}

// BindAfterWrite sequences a write with a continuation of either tag.
// Once the prefix may have mutated the store, the chain stays Write whatever
// the suffix is.
func BindAfterWrite[E Effect, A, B any](m IO[Write, A], f func(A) IO[E, B]) IO[Write, B] {
	return bind[Write, E, Write](m, f)
}

// Map applies a pure function to the result of a computation.
// The tag is unchanged. If m fails, f is not invoked.
func Map[E Effect, A, B any](m IO[E, A], f func(A) B) IO[E, B] {
	return IO[E, B]{run: func(s Session) (B, error) {
		a, err := m.exec(s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a), nil
	}}
}

// MapErr is Map with a fallible function. A failure from f is reported on
// the same channel as a failure from m.
func MapErr[E Effect, A, B any](m IO[E, A], f func(A) (B, error)) IO[E, B] {
	return IO[E, B]{run: func(s Session) (B, error) {
		a, err := m.exec(s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a)
	}}
}

// Then sequences two computations with the same tag, discarding the first
// result. It avoids the closure Bind(m, func(A) IO[E, B] { return n }) needs.
func Then[E Effect, A, B any](m IO[E, A], n IO[E, B]) IO[E, B] {
	return then[E, E, E](m, n)
}

// ThenWrite runs a read, discards its result, then runs a write.
func ThenWrite[A, B any](m IO[Read, A], n IO[Write, B]) IO[Write, B] {
	return then[Read, Write, Write](m, n)
}

func then[E1, E2, E3 Effect, A, B any](m IO[E1, A], n IO[E2, B]) IO[E3, B] {
	return IO[E3, B]{run: func(s Session) (B, error) {
		if _, err := m.exec(s); err != nil {
			var zero B
			return zero, err
		}
		return n.exec(s)
	}}
}
