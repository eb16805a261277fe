package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/words"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is empty", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "progress.json"))

		known, err := store.Known(ctx, "42")
		require.NoError(t, err)
		assert.Empty(t, known)
	})

	t.Run("mark and unmark", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "nested", "progress.json"))

		require.NoError(t, store.SetKnown(ctx, "42", "1", true))
		require.NoError(t, store.SetKnown(ctx, "42", "2", true))
		require.NoError(t, store.SetKnown(ctx, "42", "2", true))
		require.NoError(t, store.SetKnown(ctx, "7", "1", true))

		known, err := store.Known(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, map[words.ID]bool{"1": true, "2": true}, known)

		require.NoError(t, store.SetKnown(ctx, "42", "1", false))
		known, err = store.Known(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, map[words.ID]bool{"2": true}, known)

		other, err := store.Known(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, map[words.ID]bool{"1": true}, other, "users are independent")
	})

	t.Run("persists across instances", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progress.json")
		require.NoError(t, New(path).SetKnown(ctx, "42", "9", true))

		known, err := New(path).Known(ctx, "42")
		require.NoError(t, err)
		assert.True(t, known["9"])

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err), "temp file is renamed away")
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progress.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := New(path).Known(ctx, "42")
		assert.ErrorContains(t, err, "parse progress file")
	})

	t.Run("concurrent writers", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "progress.json"))

		var wg sync.WaitGroup
		for _, id := range []words.ID{"1", "2", "3", "4", "5"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.SetKnown(ctx, "42", id, true))
			}()
		}
		wg.Wait()

		known, err := store.Known(ctx, "42")
		require.NoError(t, err)
		assert.Len(t, known, 5)
	})
}
