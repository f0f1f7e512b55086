// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small Client interface. The bucket it
// points at is the durable mirror of the family dataset: core/versionstore
// builds revisioned, commit-annotated writes on top of it, and core/backup
// keeps its snapshots there. Both AWS S3 and self-hosted MinIO work.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket (used as connectivity check).
//   - PutObject / GetObject: Upload and download content.
//   - StatObject: Reads the ETag used as revision token.
//   - ListObjects: Lists objects in a bucket (supports prefix/recursive/metadata).
//   - RemoveObject: Deletes a single object.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "heritage")
package storage
