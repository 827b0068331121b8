package storage

import (
	"context"
	"io"
	"log"
	"mime"

	"vibeconnect/internal/domain"
)

// StoreConfig holds configuration for creating an artifact store.
type StoreConfig struct {
	Provider string // "local" or "s3"
	Local    LocalConfig
	S3       S3Config
}

// NewArtifactStore creates an artifact store from config. Provider "s3"
// uses AWS S3; "local" (or unknown) writes to the local filesystem.
func NewArtifactStore(config StoreConfig) (domain.ArtifactStore, error) {
	switch config.Provider {
	case "s3":
		return NewS3Store(config.S3)
	case "local":
		return NewLocalStore(config.Local)
	default:
		log.Printf("[STORAGE] Unknown storage provider %q, using local", config.Provider)
		return NewLocalStore(config.Local)
	}
}

// extensionFor maps a MIME type hint to a file extension, defaulting to
// .bin when the hint is missing or unknown.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// noopStore discards content and deletes nothing. Used in tests.
type noopStore struct{}

func NewNoopStore() domain.ArtifactStore { return &noopStore{} }

func (noopStore) Store(_ context.Context, content io.Reader, _ string) (*domain.Artifact, error) {
	_, err := io.Copy(io.Discard, content)
	if err != nil {
		return nil, err
	}
	return &domain.Artifact{URL: "/uploads/events/noop"}, nil
}

func (noopStore) Delete(context.Context, string) error { return nil }
