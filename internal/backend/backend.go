// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package backend opens the store selected by the host configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"code.hybscloud.com/storeio/internal/config"
	"code.hybscloud.com/storeio/store"
	"code.hybscloud.com/storeio/store/postgres"
	"code.hybscloud.com/storeio/store/redis"
	"code.hybscloud.com/storeio/store/s3"
	"code.hybscloud.com/storeio/store/sqlite"
)

// Persister builds the persister for cfg.Backend. The memory backend has
// none and yields nil.
func Persister(ctx context.Context, cfg config.Config) (store.Persister, error) {
	switch cfg.Backend {
	case "memory":
		return nil, nil
	case "sqlite":
		return sqlite.Open(ctx, cfg.SQLite.Path)
	case "postgres":
		return postgres.Open(ctx, cfg.Postgres.DSN)
	case "redis":
		return redis.Open(redis.Options{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		}), nil
	case "s3":
		return s3.Open(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Open opens a store over the configured backend and loads its snapshot.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*store.Store, error) {
	p, err := Persister(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	opts := []store.Option{store.WithLogger(logger.Named("store"))}
	if p != nil {
		opts = append(opts, store.WithPersister(p))
	}
	st, err := store.Open(ctx, opts...)
	if err != nil {
		if c, ok := p.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return nil, err
	}
	logger.Debug("store opened", zap.String("backend", cfg.Backend), zap.Uint64("version", st.Version()))
	return st, nil
}
