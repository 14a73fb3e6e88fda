// Package storage uploads generated files to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stemsi/feedesk-backend/internal/config"
)

// S3Client writes objects under a fixed bucket and key prefix.
type S3Client struct {
	raw    *minio.Client
	bucket string
	prefix string
}

// NewS3Client connects to the configured endpoint and makes sure the bucket exists.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &S3Client{raw: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Put stores data under prefix+name and returns the full object key.
func (c *S3Client) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := c.prefix + name
	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return key, nil
}

// PresignGet returns a temporary download URL for key.
func (c *S3Client) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := c.raw.PresignedGetObject(ctx, c.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return u.String(), nil
}
