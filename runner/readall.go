// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/storeio"
)

// ReadAll executes independent read computations concurrently, each in its
// own read-only session, and returns their results in order.
// The first failure cancels the remaining executions and is returned.
func ReadAll[A any](ctx context.Context, r *Runner, ms ...storeio.IO[storeio.Read, A]) ([]A, error) {
	out := make([]A, len(ms))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range ms {
		g.Go(func() error {
			a, err := Read(gctx, r, m)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
