package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest runs the shared Store contract tests.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("recent content newest first with limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, store.SaveContent(ctx, ContentItem{
				ID:        fmt.Sprintf("c%d", i),
				UserID:    "u1",
				Platform:  "instagram",
				Text:      fmt.Sprintf("post %d", i),
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
				Likes:     i,
			}))
		}

		items, err := store.RecentContent(ctx, "u1", 3)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "c4", items[0].ID)
		assert.Equal(t, "c2", items[2].ID)
	})

	t.Run("content is scoped per user", func(t *testing.T) {
		items, err := store.RecentContent(ctx, "someone-else", 10)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("memory kv roundtrip and overwrite", func(t *testing.T) {
		require.NoError(t, store.SetMemory(ctx, "u1", "tone", []byte("casual")))
		require.NoError(t, store.SetMemory(ctx, "u1", "tone", []byte("direct")))

		value, err := store.GetMemory(ctx, "u1", "tone")
		require.NoError(t, err)
		assert.Equal(t, []byte("direct"), value)

		_, err = store.GetMemory(ctx, "u1", "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("entry log newest first", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, store.AppendEntry(ctx, Entry{
				UserID:    "u1",
				Timestamp: base.Add(time.Duration(i) * time.Minute),
				Summary:   fmt.Sprintf("decision %d", i),
			}))
		}

		entries, err := store.RecentEntries(ctx, "u1", 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "decision 2", entries[0].Summary)
		assert.Equal(t, "decision 1", entries[1].Summary)
	})
}

func TestMemStore(t *testing.T) {
	t.Parallel()
	storeUnderTest(t, NewMemStore())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	storeUnderTest(t, store)
}

func TestContentItem_Engagement(t *testing.T) {
	t.Parallel()

	item := ContentItem{Likes: 10, Comments: 4, Shares: 1}
	assert.Equal(t, 15, item.Engagement())
}
