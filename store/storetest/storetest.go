// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package storetest checks that a [store.Persister] round-trips snapshots.
package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/storeio/store"
)

// Run exercises the persister returned by open. Each subtest gets a fresh,
// empty persister.
func Run(t *testing.T, open func(t *testing.T) store.Persister) {
	t.Run("EmptyLoad", func(t *testing.T) {
		p := open(t)
		snap, err := p.Load(context.Background())
		require.NoError(t, err)
		require.Zero(t, snap.Version)
		require.Zero(t, snap.Records.Len())
	})

	t.Run("RoundTrip", func(t *testing.T) {
		p := open(t)
		want := store.Snapshot{
			Version: 3,
			Records: store.Records{
				"Dog": {
					"1": json.RawMessage(`{"id":"1","name":"Rex"}`),
					"2": json.RawMessage(`{"id":"2","name":"Fido"}`),
				},
				"Cat": {"tom": json.RawMessage(`{"name":"tom"}`)},
			},
		}
		require.NoError(t, p.Save(context.Background(), want))
		got, err := p.Load(context.Background())
		require.NoError(t, err)
		if diff := cmp.Diff(normalize(t, want), normalize(t, got)); diff != "" {
			t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		p := open(t)
		ctx := context.Background()
		require.NoError(t, p.Save(ctx, store.Snapshot{
			Version: 1,
			Records: store.Records{"Dog": {"1": json.RawMessage(`{}`)}},
		}))
		require.NoError(t, p.Save(ctx, store.Snapshot{
			Version: 2,
			Records: store.Records{"Cat": {"tom": json.RawMessage(`{}`)}},
		}))
		got, err := p.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(2), got.Version)
		require.Equal(t, []string{"Cat"}, got.Records.Types())
	})

	t.Run("StoreReopen", func(t *testing.T) {
		p := open(t)
		ctx := context.Background()
		st, err := store.Open(ctx, store.WithPersister(p))
		require.NoError(t, err)
		sess, err := st.BeginWrite(ctx)
		require.NoError(t, err)
		require.NoError(t, sess.Put("Dog", "42", json.RawMessage(`{"id":"42"}`), false))
		require.NoError(t, sess.Commit())

		reopened, err := store.Open(ctx, store.WithPersister(p))
		require.NoError(t, err)
		require.Equal(t, st.Version(), reopened.Version())
		r, err := reopened.BeginRead(ctx)
		require.NoError(t, err)
		defer r.Close()
		payload, ok, err := r.Get("Dog", "42")
		require.NoError(t, err)
		require.True(t, ok)
		require.JSONEq(t, `{"id":"42"}`, string(payload))
	})
}

// normalize decodes every payload so that backends which reformat JSON,
// such as JSONB columns, compare equal.
func normalize(t *testing.T, snap store.Snapshot) map[string]any {
	t.Helper()
	out := map[string]any{"version": snap.Version}
	for typ, byKey := range snap.Records {
		decoded := map[string]any{}
		for key, payload := range byKey {
			var v any
			require.NoError(t, json.Unmarshal(payload, &v))
			decoded[key] = v
		}
		out[typ] = decoded
	}
	return out
}
