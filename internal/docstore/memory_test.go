package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latest(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap := <-sub.Updates():
		return snap
	default:
		t.Fatal("no snapshot delivered")
		return Snapshot{}
	}
}

func TestMemoryCreateAssignsID(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	id1, err := store.CreateDocument(ctx, "students", map[string]any{"nama": "Budi"})
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	id2, err := store.CreateDocument(ctx, "students", map[string]any{"nama": "Ani"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestMemorySubscriptionDeliversOrderedSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sub, err := store.SubscribeToQuery(ctx, "students", "nama")
	require.NoError(t, err)
	defer sub.Cancel()

	snap := latest(t, sub)
	require.NoError(t, snap.Err)
	assert.Empty(t, snap.Docs)

	_, err = store.CreateDocument(ctx, "students", map[string]any{"nama": "Citra"})
	require.NoError(t, err)
	_, err = store.CreateDocument(ctx, "students", map[string]any{"nama": "Ani"})
	require.NoError(t, err)

	snap = latest(t, sub)
	require.NoError(t, snap.Err)
	require.Len(t, snap.Docs, 2)
	assert.Equal(t, "Ani", snap.Docs[0].Fields["nama"])
	assert.Equal(t, "Citra", snap.Docs[1].Fields["nama"])
}

func TestMemorySubscriptionLatestWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sub, err := store.SubscribeToQuery(ctx, "students", "nama")
	require.NoError(t, err)
	defer sub.Cancel()

	// Several undrained writes; only the final snapshot must be observable.
	for _, nama := range []string{"A", "B", "C"} {
		_, err := store.CreateDocument(ctx, "students", map[string]any{"nama": nama})
		require.NoError(t, err)
	}

	snap := latest(t, sub)
	require.NoError(t, snap.Err)
	assert.Len(t, snap.Docs, 3)
}

func TestMemorySubscriptionScopedToCollection(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sub, err := store.SubscribeToQuery(ctx, "students", "nama")
	require.NoError(t, err)
	defer sub.Cancel()
	latest(t, sub)

	_, err = store.CreateDocument(ctx, "users", map[string]any{"username": "budi"})
	require.NoError(t, err)

	select {
	case <-sub.Updates():
		t.Fatal("write to another collection must not redeliver")
	default:
	}
}

func TestMemoryUpdateAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	err := store.UpdateDocument(ctx, "students", "missing", map[string]any{"nama": "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := store.CreateDocument(ctx, "students", map[string]any{"nama": "Budi", "nim": "12345678"})
	require.NoError(t, err)

	err = store.UpdateDocument(ctx, "students", id, map[string]any{"nama": "Budi Santoso"})
	require.NoError(t, err)

	doc, err := store.GetDocument(ctx, "students", id)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", doc.Fields["nama"])
	assert.Equal(t, "12345678", doc.Fields["nim"])

	// SetDocument creates when absent and merges when present.
	err = store.SetDocument(ctx, "users", "uid-1", map[string]any{"role": "user"})
	require.NoError(t, err)
	err = store.SetDocument(ctx, "users", "uid-1", map[string]any{"username": "budi"})
	require.NoError(t, err)

	doc, err = store.GetDocument(ctx, "users", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "user", doc.Fields["role"])
	assert.Equal(t, "budi", doc.Fields["username"])
}

func TestMemoryDeleteUnknownIDIsQuiet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.DeleteDocument(ctx, "students", "never-existed"))

	_, err := store.GetDocument(ctx, "students", "never-existed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptionCancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sub, err := store.SubscribeToQuery(ctx, "students", "nama")
	require.NoError(t, err)
	sub.Cancel()
	sub.Cancel() // idempotent

	_, err = store.CreateDocument(ctx, "students", map[string]any{"nama": "Budi"})
	require.NoError(t, err)

	// Channel is closed; a receive must not yield a fresh snapshot.
	snap, ok := <-sub.Updates()
	if ok {
		assert.Empty(t, snap.Docs)
	}
}
