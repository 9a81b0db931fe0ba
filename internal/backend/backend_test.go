// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package backend

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"code.hybscloud.com/storeio/internal/config"
	"code.hybscloud.com/storeio/store/sqlite"
)

func TestMemoryBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "memory"
	st, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, st.Version())
}

func TestSQLiteBackendPersists(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "store.db")

	st, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	_, ok := persisterOf(t, cfg).(*sqlite.Persister)
	assert.True(t, ok)

	sess, err := st.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.Put("Dog", "1", json.RawMessage(`{}`), false))
	require.NoError(t, sess.Commit())
	require.NoError(t, st.Close())

	st, err = Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, uint64(1), st.Version())
}

func TestUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "etcd"
	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unknown backend")
}

func TestS3BackendNeedsBucket(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "s3"
	_, err := Persister(context.Background(), cfg)
	assert.ErrorContains(t, err, "bucket required")
}

func persisterOf(t *testing.T, cfg config.Config) any {
	t.Helper()
	p, err := Persister(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if c, ok := p.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	})
	return p
}
