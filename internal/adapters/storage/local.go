package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"vibeconnect/internal/domain"
)

// LocalConfig holds configuration for the filesystem-backed store.
type LocalConfig struct {
	// Dir is the directory uploads are written to, e.g. "uploads/events".
	Dir string
	// URLPrefix is the public path the directory is served under,
	// e.g. "/uploads/events". Stored URLs are relative; the presenter
	// prefixes them with the deployment's base URL.
	URLPrefix string
}

type localStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore returns an ArtifactStore writing to the local filesystem.
// Local artifacts carry no deletion handle: replaced files are left in
// place, matching a plain static-uploads deployment.
func NewLocalStore(config LocalConfig) (domain.ArtifactStore, error) {
	dir := config.Dir
	if dir == "" {
		dir = "uploads/events"
	}
	urlPrefix := config.URLPrefix
	if urlPrefix == "" {
		urlPrefix = "/uploads/events"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStore{dir: dir, urlPrefix: urlPrefix}, nil
}

func (s *localStore) Store(_ context.Context, content io.Reader, contentType string) (*domain.Artifact, error) {
	name := uuid.NewString() + extensionFor(contentType)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close upload file: %w", err)
	}

	return &domain.Artifact{URL: s.urlPrefix + "/" + name}, nil
}

func (s *localStore) Delete(_ context.Context, deletionHandle string) error {
	if deletionHandle == "" {
		return nil
	}
	// Handles are bare file names; refuse anything traversing out of dir.
	if filepath.Base(deletionHandle) != deletionHandle {
		return fmt.Errorf("invalid deletion handle %q", deletionHandle)
	}
	return os.Remove(filepath.Join(s.dir, deletionHandle))
}
