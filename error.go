// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storeio

import "errors"

// Core failures. Store-engine failures pass through unchanged and are
// matched with errors.Is against the store package sentinels.
var (
	// ErrNilComputation is returned when a zero IO, or a computation built
	// from a nil function, is executed.
	ErrNilComputation = errors.New("storeio: nil computation")

	// ErrNilSession is returned by Run when no session is supplied.
	ErrNilSession = errors.New("storeio: nil session")

	// ErrNilFailure is the failure of Fail(nil).
	ErrNilFailure = errors.New("storeio: failure without error")

	// ErrNilEntity is returned by Modify when the computation yields a nil pointer.
	ErrNilEntity = errors.New("storeio: modify on nil entity")
)
