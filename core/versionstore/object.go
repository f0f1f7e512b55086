package versionstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"heritage/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectStore is a Store backed by an object storage bucket.
type ObjectStore struct {
	client storage.Client
	bucket string
}

// NewObjectStore creates a Store writing into bucket.
func NewObjectStore(client storage.Client, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

// Get reads the object and its ETag.
func (s *ObjectStore) Get(ctx context.Context, p string) (Content, error) {
	info, err := s.client.StatObject(ctx, s.bucket, p, minio.StatObjectOptions{})
	if err != nil {
		return Content{}, translateErr(err, p)
	}

	reader, err := s.client.GetObject(ctx, s.bucket, p, minio.GetObjectOptions{})
	if err != nil {
		return Content{}, translateErr(err, p)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read %s: %w", p, translateErr(err, p))
	}

	return Content{
		Path:     p,
		Data:     data,
		Revision: info.ETag,
		Message:  normalizeMeta(info.UserMetadata)[MetaMessage],
	}, nil
}

// Put uploads data. A non-empty opts.Revision is compared against the current
// ETag first; the check and the write are not atomic.
func (s *ObjectStore) Put(ctx context.Context, p string, data []byte, opts PutOptions) (string, error) {
	if opts.Revision != "" {
		if err := s.checkRevision(ctx, p, opts.Revision); err != nil {
			return "", err
		}
	}

	info, err := s.client.PutObject(ctx, s.bucket, p, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: encodeMeta(opts.Message, opts.Metadata),
	})
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", p, err)
	}
	return info.ETag, nil
}

// Delete removes the object at p.
func (s *ObjectStore) Delete(ctx context.Context, p, revision string) error {
	if revision != "" {
		if err := s.checkRevision(ctx, p, revision); err != nil {
			return err
		}
	}
	if err := s.client.RemoveObject(ctx, s.bucket, p, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", p, translateErr(err, p))
	}
	return nil
}

// List returns the objects directly under dir.
func (s *ObjectStore) List(ctx context.Context, dir string) ([]Entry, error) {
	opts := minio.ListObjectsOptions{
		Prefix:       dirPrefix(dir),
		Recursive:    false,
		WithMetadata: true,
	}

	var entries []Entry
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, obj.Err)
		}
		// Common prefixes come back as keys ending in "/".
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		entries = append(entries, Entry{
			Name:     path.Base(obj.Key),
			Path:     obj.Key,
			Size:     obj.Size,
			Revision: obj.ETag,
			Modified: obj.LastModified,
			Metadata: normalizeMeta(obj.UserMetadata),
		})
	}
	return entries, nil
}

// Ping checks that the bucket is reachable.
func (s *ObjectStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to reach storage: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *ObjectStore) checkRevision(ctx context.Context, p, revision string) error {
	info, err := s.client.StatObject(ctx, s.bucket, p, minio.StatObjectOptions{})
	if err != nil {
		err = translateErr(err, p)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s: %w", p, ErrConflict)
		}
		return err
	}
	if info.ETag != revision {
		return fmt.Errorf("%s: have %s, want %s: %w", p, revision, info.ETag, ErrConflict)
	}
	return nil
}

// translateErr maps S3 "missing key" responses to ErrNotFound.
func translateErr(err error, p string) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", p, err)
}
