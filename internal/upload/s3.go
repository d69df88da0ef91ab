// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package upload

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioAPI is the subset of the minio client the backend uses.
// Narrowed to an interface so tests can substitute a recorder.
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// S3Backend stores uploads in any S3-compatible object store.
type S3Backend struct {
	client minioAPI
	bucket string
}

// S3Config carries the connection settings for an S3-compatible store.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// NewS3Backend connects to an S3-compatible endpoint.
func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client for %s: %w", cfg.Endpoint, err)
	}

	return &S3Backend{client: client, bucket: cfg.Bucket}, nil
}

// Put stores the content under key and returns the stored object.
func (b *S3Backend) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (*Object, error) {
	info, err := b.client.PutObject(ctx, b.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	return &Object{
		Key:         info.Key,
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

// SignedURL returns a presigned GET URL for the key.
func (b *S3Backend) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	signed, err := b.client.PresignedGetObject(ctx, b.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return signed.String(), nil
}

// Remove deletes the object. Removing an absent key is not an error:
// S3 DeleteObject is idempotent and the minio client surfaces no error
// for missing keys.
func (b *S3Backend) Remove(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}
