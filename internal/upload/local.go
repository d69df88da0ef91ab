// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalBackend stores uploads on the local filesystem.
//
// Intended for development: files land under baseDir mirroring the object
// key layout, and URLs point at the server's static file mount. Signed URLs
// are plain paths since there is nothing to sign.
type LocalBackend struct {
	baseDir   string
	publicURL string
}

// NewLocalBackend prepares a disk-backed store rooted at baseDir.
// publicURL is the URL prefix the API serves the directory under.
func NewLocalBackend(baseDir, publicURL string) (*LocalBackend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", baseDir, err)
	}
	return &LocalBackend{
		baseDir:   baseDir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Put stores the content under key and returns the stored object.
func (b *LocalBackend) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (*Object, error) {
	target := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create dir for %q: %w", key, err)
	}

	file, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create file %q: %w", key, err)
	}
	defer file.Close()

	written, err := io.Copy(file, content)
	if err != nil {
		os.Remove(target)
		return nil, fmt.Errorf("write file %q: %w", key, err)
	}

	return &Object{
		Key:         key,
		URL:         b.publicURL + "/" + key,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// SignedURL returns the static-mount path for the key. Local files are not
// access controlled beyond key unguessability, so the TTL is ignored.
func (b *LocalBackend) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return b.publicURL + "/" + key, nil
}

// Remove deletes the object. Removing an absent key is not an error.
func (b *LocalBackend) Remove(ctx context.Context, key string) error {
	target := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file %q: %w", key, err)
	}
	return nil
}

// BaseDir exposes the storage root for the API's static file mount.
func (b *LocalBackend) BaseDir() string {
	return b.baseDir
}
