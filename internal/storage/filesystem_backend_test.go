package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *FilesystemBackend {
	t.Helper()
	b, err := NewFilesystemBackend(filepath.Join(t.TempDir(), "artifacts"))
	require.NoError(t, err)
	return b
}

func TestFilesystemBackendStoreRetrieve(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ref, err := b.Store(ctx, &Artifact{
		Key:         "login/row-1/fail/row-1.png",
		ContentType: "image/png",
		Content:     []byte("png-bytes"),
		Metadata:    map[string]string{"suite": "login"},
		CreatedTime: created,
	})
	require.NoError(t, err)
	assert.Equal(t, "FS", ref.Backend)
	assert.Equal(t, int64(9), ref.Size)
	assert.Len(t, ref.Checksum, 64)
	assert.Equal(t, filepath.Join(b.Root(), "login", "row-1", "fail", "row-1.png"), ref.Location)
	assert.FileExists(t, ref.Location)
	assert.FileExists(t, ref.Location+".meta")

	got, err := b.Retrieve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), got.Content)
	assert.Equal(t, "login", got.Metadata["suite"])

	exists, err := b.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("checksum mismatch", func(t *testing.T) {
		require.NoError(t, os.WriteFile(ref.Location, []byte("tampered"), 0644))
		_, err := b.Retrieve(ctx, ref)
		assert.ErrorContains(t, err, "checksum mismatch")
	})
}

func TestFilesystemBackendInvalidKeys(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	for _, key := range []string{"", "   ", "../escape.png", "a/../../b.png", "..", "shot.png.meta"} {
		_, err := b.Store(ctx, &Artifact{Key: key, Content: []byte("x")})
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestFilesystemBackendListAndDelete(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	for _, key := range []string{"signup/b.png", "login/a.png", "login/c.png"} {
		_, err := b.Store(ctx, &Artifact{Key: key, ContentType: "image/png", Content: []byte(key)})
		require.NoError(t, err)
	}

	all, err := b.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "login/a.png", all[0].Key)
	assert.Equal(t, "image/png", all[0].ContentType)
	assert.NotEmpty(t, all[0].Checksum)

	login, err := b.List(ctx, "login/")
	require.NoError(t, err)
	assert.Len(t, login, 2)

	require.NoError(t, b.Delete(ctx, login[0]))
	require.NoError(t, b.Delete(ctx, login[0]), "deleting twice is fine")
	exists, err := b.Exists(ctx, login[0])
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = b.Retrieve(ctx, login[0])
	assert.ErrorIs(t, err, ErrNotFound)

	info := b.GetInfo()
	assert.Equal(t, int64(2), info.Statistics.TotalFiles)
}

func TestFilesystemBackendHealth(t *testing.T) {
	b := newBackend(t)
	assert.NoError(t, b.HealthCheck(context.Background()))

	_, err := NewFilesystemBackend("")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain-file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = NewFilesystemBackend(filepath.Join(file, "sub"))
	assert.Error(t, err)
}
