package versionstore

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no content exists at a path.
	ErrNotFound = errors.New("versionstore: not found")
	// ErrConflict is returned when a supplied revision token is stale.
	ErrConflict = errors.New("versionstore: revision conflict")
)

// Metadata keys written alongside content.
const (
	MetaMessage     = "commit-message"
	MetaRecordCount = "record-count"
	MetaTrigger     = "trigger"
)

// Store is the external versioned store.
type Store interface {
	Get(ctx context.Context, path string) (Content, error)
	Put(ctx context.Context, path string, data []byte, opts PutOptions) (string, error)
	Delete(ctx context.Context, path, revision string) error
	List(ctx context.Context, dir string) ([]Entry, error)
	Ping(ctx context.Context) error
}

// Content is the content stored at a path together with its revision.
type Content struct {
	Path     string
	Data     []byte
	Revision string
	Message  string
}

// Entry describes one item returned by List.
type Entry struct {
	Name     string
	Path     string
	Size     int64
	Revision string
	Modified time.Time
	Metadata map[string]string
}

// PutOptions controls a Put.
type PutOptions struct {
	// Message is the commit message recorded with the write.
	Message string
	// Revision, when set, must match the current revision at the path.
	Revision string
	// Metadata is stored with the content and returned by List.
	Metadata map[string]string
}

// normalizeMeta lower-cases keys, strips the S3 user-metadata prefix, and
// unescapes values written by encodeMeta.
func normalizeMeta(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-")
		if decoded, err := url.QueryUnescape(v); err == nil {
			v = decoded
		}
		out[key] = v
	}
	return out
}

// encodeMeta escapes values so non-ASCII names survive HTTP headers.
func encodeMeta(message string, extra map[string]string) map[string]string {
	out := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		out[k] = url.QueryEscape(v)
	}
	if message != "" {
		out[MetaMessage] = url.QueryEscape(message)
	}
	return out
}

func dirPrefix(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return ""
	}
	return dir + "/"
}
