// Package versionstore provides the revisioned content store the dataset is
// mirrored into.
//
// A Store offers exactly four content operations plus a connectivity probe:
//
//   - Get: read content and its revision token at a path.
//   - Put: create or update content with a commit message. When a revision
//     token is supplied and no longer matches, the write fails with
//     ErrConflict.
//   - Delete: remove content, optionally guarded by a revision token.
//   - List: list the entries directly under a directory.
//   - Ping: a lightweight identity/connectivity check.
//
// ObjectStore implements Store on top of core/storage (MinIO/S3). The object
// ETag is the revision token and the commit message travels as user
// metadata. Memory implements Store in process; it backs local fallback
// snapshots and tests.
//
// Writes are independent and last-write-wins per path. There is no locking
// between writers.
package versionstore
