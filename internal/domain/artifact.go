package domain

import (
	"context"
	"io"
)

// Artifact is a durable reference to a stored binary object.
type Artifact struct {
	// URL is the reference persisted on the event: a relative path for
	// local storage, an absolute URL for remote object storage.
	URL string
	// DeletionHandle is an opaque token enabling later deletion of the
	// stored object. Empty when the backend does not support deletion
	// (local storage).
	DeletionHandle string
}

// ArtifactStore durably stores binary media. The two implementations
// (local filesystem, S3) are interchangeable; callers never branch on
// the deployment mode.
type ArtifactStore interface {
	Store(ctx context.Context, content io.Reader, contentType string) (*Artifact, error)
	Delete(ctx context.Context, deletionHandle string) error
}
