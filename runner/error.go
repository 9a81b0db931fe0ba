// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package runner

import "fmt"

// Error is a failure of a computation executed by the runner, annotated with
// the session it ran in. It unwraps to the computation's own failure.
type Error struct {
	Session string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("runner: session %s: %v", e.Session, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
