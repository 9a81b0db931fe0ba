// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio

// Run executes m against s and returns its result or its first failure.
//
// Run is the only way to execute a computation. It enters s for the duration
// of the call: a session executes one computation at a time, and a closed
// session is rejected before the deferred function is reached. The writability
// of s is the caller's choice; a Write computation run against a read-only
// session fails at its first mutation with store.ErrReadOnly.
func Run[E Effect, A any](m IO[E, A], s Session) (A, error) {
	var zero A
	if m.run == nil {
		return zero, ErrNilComputation
	}
	if s == nil {
		return zero, ErrNilSession
	}
	release, err := s.Enter()
	if err != nil {
		return zero, err
	}
	defer release()
	return m.run(s)
}
