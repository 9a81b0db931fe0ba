// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package s3 persists store snapshots as a single JSON object in an
// S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"code.hybscloud.com/storeio/store"
)

const (
	// DefaultKey is the object key used when Config.Key is empty.
	DefaultKey = "storeio/snapshot.json"
	// DefaultRegion is used when Config.Region is empty.
	DefaultRegion = "us-east-1"
)

// API is the subset of the S3 client the persister uses.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds construction parameters.
type Config struct {
	Bucket string
	Key    string
	Region string
	// Endpoint overrides the service endpoint, e.g. "http://127.0.0.1:9000" for MinIO.
	Endpoint string
	// AccessKeyID and SecretAccessKey select static credentials; when empty
	// the default credential chain applies.
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// Persister is a [store.Persister] backed by one S3 object.
type Persister struct {
	client API
	bucket string
	key    string
}

var _ store.Persister = (*Persister)(nil)

// Open builds an S3 client from cfg.
func Open(ctx context.Context, cfg Config) (*Persister, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(client, cfg.Bucket, cfg.Key), nil
}

// New returns a persister over an existing client.
func New(client API, bucket, key string) *Persister {
	if key == "" {
		key = DefaultKey
	}
	return &Persister{client: client, bucket: bucket, key: key}
}

// Load implements [store.Persister]. A missing object yields an empty snapshot.
func (p *Persister) Load(ctx context.Context) (store.Snapshot, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &p.bucket, Key: &p.key})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return store.Snapshot{}, nil
		}
		return store.Snapshot{}, fmt.Errorf("s3: get %s/%s: %w", p.bucket, p.key, err)
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("s3: read %s/%s: %w", p.bucket, p.key, err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return store.Snapshot{}, fmt.Errorf("s3: decode %s/%s: %w", p.bucket, p.key, err)
	}
	return snap, nil
}

// Save implements [store.Persister].
func (p *Persister) Save(ctx context.Context, snap store.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("s3: encode snapshot: %w", err)
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &p.bucket,
		Key:           &p.key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s/%s: %w", p.bucket, p.key, err)
	}
	return nil
}
