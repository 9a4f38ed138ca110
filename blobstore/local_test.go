package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocal_Read(t *testing.T) {
	tmpDir := t.TempDir()
	data := []byte("raw jpeg bytes, content is opaque to the store")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.jpg"), data, 0o644))

	ctx := context.Background()

	t.Run("rooted", func(t *testing.T) {
		store := NewLocal(tmpDir)
		got, err := store.Read(ctx, "a.jpg")
		require.NoError(t, err)
		require.Equal(t, data, got)
	})

	t.Run("unrooted absolute path", func(t *testing.T) {
		store := NewLocal("")
		got, err := store.Read(ctx, filepath.Join(tmpDir, "a.jpg"))
		require.NoError(t, err)
		require.Equal(t, data, got)
	})

	t.Run("missing", func(t *testing.T) {
		store := NewLocal(tmpDir)
		_, err := store.Read(ctx, "nope.jpg")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		store := NewLocal(tmpDir)
		_, err := store.Read(ctx, "a.jpg")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestErrNotFound_IsNotExist(t *testing.T) {
	require.True(t, errors.Is(ErrNotFound, os.ErrNotExist))
}
