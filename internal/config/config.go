// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the storeio host configuration from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Backends names the supported persistence backends.
var Backends = []string{"memory", "sqlite", "postgres", "redis", "s3"}

// Environment overrides.
const (
	EnvBackend = "STOREIO_BACKEND"
	// EnvDSN sets the sqlite path, the postgres DSN or the redis address,
	// depending on the backend.
	EnvDSN = "STOREIO_DSN"
)

// Config holds all storeio host configuration.
type Config struct {
	Backend string `yaml:"backend"`

	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`

	Runner RunnerConfig `yaml:"runner"`
	Log    LogConfig    `yaml:"log"`
}

// SQLiteConfig configures the sqlite backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// S3Config configures the s3 backend.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

// RunnerConfig configures write retries.
type RunnerConfig struct {
	MaxRetries uint64 `yaml:"max_retries"`
	Backoff    string `yaml:"backoff"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend: "sqlite",
		SQLite:  SQLiteConfig{Path: "storeio.db"},
		Redis:   RedisConfig{Address: "localhost:6379"},
		S3:      S3Config{Region: "us-east-1"},
		Runner:  RunnerConfig{MaxRetries: 5, Backoff: "5ms"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		return
	}
	switch c.Backend {
	case "sqlite":
		c.SQLite.Path = dsn
	case "postgres":
		c.Postgres.DSN = dsn
	case "redis":
		c.Redis.Address = dsn
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %v)", c.Backend, Backends)
	}
	if c.Backend == "s3" && c.S3.Bucket == "" {
		return errors.New("s3 backend requires s3.bucket")
	}
	if _, err := c.BackoffDuration(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// BackoffDuration parses Runner.Backoff. Empty means zero, leaving the
// runner's default in place.
func (c Config) BackoffDuration() (time.Duration, error) {
	if c.Runner.Backoff == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Runner.Backoff)
	if err != nil {
		return 0, fmt.Errorf("runner.backoff: %w", err)
	}
	return d, nil
}

// NewLogger builds a production zap logger at the configured level.
// verbose forces debug output.
func (c Config) NewLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
