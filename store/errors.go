// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import "errors"

var (
	// ErrReadOnly is returned when a read-only session is asked to mutate.
	ErrReadOnly = errors.New("store: session is read-only")

	// ErrSessionClosed is returned by any call on a committed, rolled back, or closed session.
	ErrSessionClosed = errors.New("store: session closed")

	// ErrSessionBusy is returned when a session is entered while another
	// execution holds it.
	ErrSessionBusy = errors.New("store: session in use")

	// ErrConflict is returned by Commit when another session committed since
	// this one began. The work may be retried against a fresh session.
	ErrConflict = errors.New("store: commit conflict")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateKey is returned when inserting a key that already exists
	// without requesting an update.
	ErrDuplicateKey = errors.New("store: duplicate primary key")

	// ErrInvalidObject is returned for objects without a type or key, for
	// payloads that are not valid JSON, and for managed objects whose
	// primary key changed.
	ErrInvalidObject = errors.New("store: invalid object")
)
