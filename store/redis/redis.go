// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package redis persists store snapshots as a single JSON value in Redis.
package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"code.hybscloud.com/storeio/store"
)

// DefaultKey is the Redis key used when Options.Key is empty.
const DefaultKey = "storeio:snapshot"

// Client is the subset of the go-redis client the persister uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Options configures a connection.
type Options struct {
	// Address of the Redis server.
	Address string
	// Password required when connecting to the server.
	Password string
	// DB to select.
	DB int
	// Key holding the snapshot.
	Key string
	// TLS config.
	TLSConfig *tls.Config
}

// DefaultOptions returns options for a local server.
func DefaultOptions() Options {
	return Options{
		Address: "localhost:6379",
		Key:     DefaultKey,
	}
}

// Persister is a [store.Persister] backed by one Redis key.
type Persister struct {
	client Client
	key    string
}

var _ store.Persister = (*Persister)(nil)

// Open connects to the server described by opts.
func Open(opts Options) *Persister {
	client := redis.NewClient(&redis.Options{
		Addr:      opts.Address,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	})
	return New(client, opts.Key)
}

// New returns a persister over an existing client.
func New(client Client, key string) *Persister {
	if key == "" {
		key = DefaultKey
	}
	return &Persister{client: client, key: key}
}

// Load implements [store.Persister]. A missing key yields an empty snapshot.
func (p *Persister) Load(ctx context.Context) (store.Snapshot, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.Snapshot{}, nil
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("redis: get %s: %w", p.key, err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return store.Snapshot{}, fmt.Errorf("redis: decode %s: %w", p.key, err)
	}
	return snap, nil
}

// Save implements [store.Persister].
func (p *Persister) Save(ctx context.Context, snap store.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: encode snapshot: %w", err)
	}
	if err := p.client.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", p.key, err)
	}
	return nil
}

// Close closes the client when it owns a connection.
func (p *Persister) Close() error {
	if c, ok := p.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
