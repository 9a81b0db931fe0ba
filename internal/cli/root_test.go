// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"code.hybscloud.com/storeio/internal/config"
	"code.hybscloud.com/storeio/runner"
	"code.hybscloud.com/storeio/store"
)

// testConfig writes a sqlite config into a temp dir and returns its path.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "storeio.yaml")
	content := fmt.Sprintf("backend: sqlite\nsqlite:\n  path: %s\nlog:\n  level: error\n", filepath.Join(dir, "store.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the CLI and decodes the data field of its output.
func execute(t *testing.T, cfg string, args ...string) (json.RawMessage, error) {
	t.Helper()
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	if err := opts.execute(context.Background(), cmd); err != nil {
		return nil, err
	}
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	require.Equal(t, "ok", resp.Status)
	return resp.Data, nil
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storeio", cmd.Use)

	for _, name := range []string{"put", "get", "list", "delete", "truncate", "types"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	config := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "", config.DefValue)
}

func TestPutGetListLifecycle(t *testing.T) {
	cfg := testConfig(t)

	_, err := execute(t, cfg, "put", "Dog", "2", `{"id":"2","name":"Fido"}`)
	require.NoError(t, err)
	_, err = execute(t, cfg, "put", "Dog", "1", `{"id":"1","name":"Rex"}`)
	require.NoError(t, err)

	data, err := execute(t, cfg, "get", "Dog", "1")
	require.NoError(t, err)
	var rec store.Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "1", rec.Key)
	assert.JSONEq(t, `{"id":"1","name":"Rex"}`, string(rec.Payload))

	data, err = execute(t, cfg, "list", "Dog")
	require.NoError(t, err)
	var recs []store.Record
	require.NoError(t, json.Unmarshal(data, &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].Key)
	assert.Equal(t, "2", recs[1].Key)

	data, err = execute(t, cfg, "types")
	require.NoError(t, err)
	assert.JSONEq(t, `["Dog"]`, string(data))
}

func TestPutDuplicateAndUpdate(t *testing.T) {
	cfg := testConfig(t)
	_, err := execute(t, cfg, "put", "Dog", "1", `{"name":"Rex"}`)
	require.NoError(t, err)

	_, err = execute(t, cfg, "put", "Dog", "1", `{"name":"Max"}`)
	require.ErrorIs(t, err, store.ErrDuplicateKey)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = execute(t, cfg, "put", "--update", "Dog", "1", `{"name":"Max"}`)
	require.NoError(t, err)
	data, err := execute(t, cfg, "get", "Dog", "1")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Max")
}

func TestDeleteAndTruncate(t *testing.T) {
	cfg := testConfig(t)
	for _, key := range []string{"a", "b", "c"} {
		_, err := execute(t, cfg, "put", "Note", key, `{}`)
		require.NoError(t, err)
	}

	_, err := execute(t, cfg, "delete", "Note", "a")
	require.NoError(t, err)
	_, err = execute(t, cfg, "get", "Note", "a")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = execute(t, cfg, "delete", "Note", "a")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = execute(t, cfg, "truncate", "Note")
	require.NoError(t, err)
	data, err := execute(t, cfg, "list", "Note")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCommandErrors(t *testing.T) {
	cfg := testConfig(t)

	_, err := execute(t, cfg, "put", "Dog", "1", `{broken`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.yaml"), "types")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorContains(t, err, "load config")
}

// closingPersister counts Close calls.
type closingPersister struct {
	closed int
}

func (*closingPersister) Load(context.Context) (store.Snapshot, error) { return store.Snapshot{}, nil }
func (*closingPersister) Save(context.Context, store.Snapshot) error   { return nil }

func (p *closingPersister) Close() error {
	p.closed++
	return nil
}

func TestStoreClosedAfterCommandFailure(t *testing.T) {
	for _, args := range [][]string{
		{"get", "Dog", "missing"},
		{"put", "Dog", "1", `{broken`},
		{"types"},
	} {
		t.Run(args[0], func(t *testing.T) {
			p := &closingPersister{}
			opts := &RootOptions{}
			cmd := newRootCommand(opts)
			cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
				st, err := store.Open(cmd.Context(), store.WithPersister(p))
				if err != nil {
					return err
				}
				opts.logger = zap.NewNop()
				opts.store = st
				opts.runner = runner.New(st)
				return nil
			}
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(args)

			err := opts.execute(context.Background(), cmd)
			if args[0] == "types" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
			assert.Equal(t, 1, p.closed)
			assert.Nil(t, opts.store)
			assert.Nil(t, opts.logger)

			// a second close is a no-op
			require.NoError(t, opts.close())
			assert.Equal(t, 1, p.closed)
		})
	}
}

func TestStartRejectsBadBackoff(t *testing.T) {
	cfg := config.Default()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "store.db")
	cfg.Runner.Backoff = "soon"

	opts := &RootOptions{}
	err := opts.start(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorContains(t, err, "runner.backoff")
	assert.Nil(t, opts.store)
	assert.Nil(t, opts.runner)

	cfg.Runner.Backoff = "2ms"
	require.NoError(t, opts.start(context.Background(), cfg))
	assert.NotNil(t, opts.runner)
	require.NoError(t, opts.close())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", nil))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "inner", WrapExitError(ExitCommandError, "inner", nil).Error())
}
