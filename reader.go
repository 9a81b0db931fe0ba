// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio

// Session access.
// Ask and Asks give later stages of a chain the session itself without
// leaving the IO wrapper.

// askSession is the deferred function of Ask.
// A package-level function value avoids allocating a closure per Ask call.
func askSession(s Session) (Session, error) { return s, nil }

// Ask returns a computation that yields the session it is run against.
func Ask[E Effect]() IO[E, Session] {
	return IO[E, Session]{run: askSession}
}

// Asks fuses Ask + Map: it applies a projection to the session.
func Asks[E Effect, A any](f func(Session) A) IO[E, A] {
	return IO[E, A]{run: func(s Session) (A, error) {
		return f(s), nil
	}}
}
