// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package upload implements the photo ingestion pipeline.

Architecture:

  - Backend: pluggable object storage (S3-compatible or local disk).
  - Processor: multipart parsing, MIME and size enforcement, image checks.
  - Key derivation: deterministic layout partitioned by category and owner.

Files are validated BEFORE any byte reaches a backend. A rejected upload
never produces a storage write.
*/
package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Object describes a stored file.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Backend is the storage abstraction the processor writes to.
type Backend interface {
	// Put stores the content under key and returns the stored object.
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (*Object, error)

	// SignedURL returns a time-limited retrieval URL for the key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Remove deletes the object. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// ObjectKey derives the storage key for an upload.
//
// Layout: {category}/{ownerID|anonymous}/{unixMillis}-{randomHex}{ext}.
// The random component prevents collisions between same-millisecond uploads
// and makes keys unguessable for the local backend's static file server.
func ObjectKey(category, ownerID, filename string) string {
	owner := ownerID
	if owner == "" {
		owner = "anonymous"
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("upload: entropy source failed: %v", err))
	}

	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%d-%s%s", category, owner, time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}
