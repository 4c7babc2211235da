package docstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"room_chat_service/pkg/errs"
)

type testDoc struct {
	ID      string   `bson:"_id,omitempty"`
	Name    string   `bson:"name"`
	Tags    []string `bson:"tags,omitempty"`
	Counter int64    `bson:"counter"`
}

func TestMemoryStore_CreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, "docs", "d1", testDoc{Name: "first"}))

	snap, err := store.Get(ctx, "docs", "d1")
	require.NoError(t, err)

	var got testDoc
	require.NoError(t, snap.Decode(&got))
	require.Equal(t, "d1", got.ID)
	require.Equal(t, "first", got.Name)

	// duplicate create fails
	require.Error(t, store.Create(ctx, "docs", "d1", testDoc{Name: "again"}))

	// unknown id is a not-found
	_, err = store.Get(ctx, "docs", "missing")
	require.Error(t, err)
	require.True(t, errs.IsNotFound(err))
}

func TestMemoryStore_UpdateFields(t *testing.T) {
	ctx := context.Background()

	t.Run("plain set replaces the field whole", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, "docs", "d1", testDoc{Name: "before"}))

		require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"name": "after"}))

		var got testDoc
		snap, _ := store.Get(ctx, "docs", "d1")
		require.NoError(t, snap.Decode(&got))
		require.Equal(t, "after", got.Name)
	})

	t.Run("union skips elements already present", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, "docs", "d1", testDoc{Name: "doc"}))

		require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"tags": Union("a")}))
		require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"tags": Union("a", "b")}))

		var got testDoc
		snap, _ := store.Get(ctx, "docs", "d1")
		require.NoError(t, snap.Decode(&got))
		require.Equal(t, []string{"a", "b"}, got.Tags)
	})

	t.Run("append preserves duplicates and order", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, "docs", "d1", testDoc{Name: "doc"}))

		require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"tags": Append("a")}))
		require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"tags": Append("b", "a")}))

		var got testDoc
		snap, _ := store.Get(ctx, "docs", "d1")
		require.NoError(t, snap.Decode(&got))
		require.Equal(t, []string{"a", "b", "a"}, got.Tags)
	})

	t.Run("increment treats a missing field as zero", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, "docs", "d1", map[string]string{"name": "doc"}))

		require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"counter": Increment(1)}))
		require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"counter": Increment(2)}))

		var got testDoc
		snap, _ := store.Get(ctx, "docs", "d1")
		require.NoError(t, snap.Decode(&got))
		require.Equal(t, int64(3), got.Counter)
	})

	t.Run("vanished document is a not-found", func(t *testing.T) {
		store := NewMemoryStore()
		err := store.UpdateFields(ctx, "docs", "missing", Fields{"name": "x"})
		require.Error(t, err)
		require.True(t, errs.IsNotFound(err))
	})
}

func TestMemoryStore_QueryAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, "docs", "d1", testDoc{Name: "one"}))
	require.NoError(t, store.Create(ctx, "docs", "d2", testDoc{Name: "two"}))
	require.NoError(t, store.Create(ctx, "docs", "d3", testDoc{Name: "three"}))

	snaps, err := store.QueryAll(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	require.Equal(t, "d1", snaps[0].ID)
	require.Equal(t, "d2", snaps[1].ID)
	require.Equal(t, "d3", snaps[2].ID)

	empty, err := store.QueryAll(ctx, "nothing")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMemoryStore_SubscribeDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, "docs", "d1", testDoc{Name: "v1"}))

	var mu sync.Mutex
	var names []string
	unsubscribe, err := store.SubscribeDocument("docs", "d1", func(snap Snapshot) {
		var got testDoc
		if snap.Decode(&got) == nil {
			mu.Lock()
			names = append(names, got.Name)
			mu.Unlock()
		}
	})
	require.NoError(t, err)

	latest := func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(names) == 0 {
			return ""
		}
		return names[len(names)-1]
	}

	// initial snapshot without any write
	require.Eventually(t, func() bool { return latest() == "v1" },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"name": "v2"}))
	require.Eventually(t, func() bool { return latest() == "v2" },
		2*time.Second, 10*time.Millisecond)

	// a write to another document of the collection does not wake this
	// subscriber
	require.NoError(t, store.Create(ctx, "docs", "d2", testDoc{Name: "other"}))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, "v2", latest())

	// unsubscribe stops delivery; calling it again is harmless
	unsubscribe()
	unsubscribe()

	require.NoError(t, store.UpdateFields(ctx, "docs", "d1", Fields{"name": "v3"}))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, "v2", latest())
}

func TestMemoryStore_SubscribeCollection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, "docs", "d1", testDoc{Name: "one"}))

	var mu sync.Mutex
	var latest []Snapshot
	unsubscribe, err := store.SubscribeCollection("docs", func(snaps []Snapshot) {
		mu.Lock()
		latest = snaps
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	size := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(latest)
	}

	require.Eventually(t, func() bool { return size() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, store.Create(ctx, "docs", "d2", testDoc{Name: "two"}))
	require.Eventually(t, func() bool { return size() == 2 },
		2*time.Second, 10*time.Millisecond)
}
