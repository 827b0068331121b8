package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Store(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalStore(LocalConfig{Dir: dir, URLPrefix: "/uploads/events"})
	require.NoError(t, err)

	artifact, err := store.Store(ctx, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.URL, "/uploads/events/"), "url: %s", artifact.URL)
	assert.True(t, strings.HasSuffix(artifact.URL, ".png"), "url: %s", artifact.URL)
	assert.Empty(t, artifact.DeletionHandle)

	name := strings.TrimPrefix(artifact.URL, "/uploads/events/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalStore_StoreUniqueNames(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(LocalConfig{Dir: t.TempDir()})
	require.NoError(t, err)

	a, err := store.Store(ctx, strings.NewReader("a"), "image/jpeg")
	require.NoError(t, err)
	b, err := store.Store(ctx, strings.NewReader("b"), "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a.URL, b.URL)
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(LocalConfig{Dir: dir})
	require.NoError(t, err)

	path := filepath.Join(dir, "stray.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, store.Delete(ctx, "stray.png"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Empty handles are a no-op, traversing handles are refused.
	require.NoError(t, store.Delete(ctx, ""))
	require.Error(t, store.Delete(ctx, "../escape.png"))
}

func TestLocalStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewLocalStore(LocalConfig{Dir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"", ".bin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extensionFor(tt.contentType), "content type %q", tt.contentType)
	}
}
