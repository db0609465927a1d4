package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/patra/internal/core/ports/driven"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	ctx := context.Background()

	entries := []driven.Entry{
		{ID: "a.pdf:1:0", Text: "first", Metadata: map[string]string{"filename_base": "a.pdf"}, Embedding: []float32{0, 0}},
		{ID: "a.pdf:1:1", Text: "second", Metadata: map[string]string{"filename_base": "a.pdf"}, Embedding: []float32{1, 0}},
		{ID: "b.pdf:1:0", Text: "third", Metadata: map[string]string{"filename_base": "b.pdf"}, Embedding: []float32{0, 1}},
	}
	require.NoError(t, store.Add(ctx, entries))
	return store
}

func TestStore_ListIDs_All(t *testing.T) {
	store := seedStore(t)

	ids, err := store.ListIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf:1:0", "a.pdf:1:1", "b.pdf:1:0"}, ids)
}

func TestStore_ListIDs_Filtered(t *testing.T) {
	store := seedStore(t)

	ids, err := store.ListIDs(context.Background(), driven.Filter{"filename_base": "a.pdf"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf:1:0", "a.pdf:1:1"}, ids)
}

func TestStore_GetByFilter(t *testing.T) {
	store := seedStore(t)

	chunks, err := store.GetByFilter(context.Background(), driven.Filter{"filename_base": "b.pdf"})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "third", chunks[0].Text)
}

func TestStore_GetByFilter_NoMatch(t *testing.T) {
	store := seedStore(t)

	chunks, err := store.GetByFilter(context.Background(), driven.Filter{"filename_base": "missing.pdf"})

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestStore_Query_OrdersByDistance(t *testing.T) {
	store := seedStore(t)

	hits, err := store.Query(context.Background(), []float32{0.9, 0}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a.pdf:1:1", hits[0].ID, "closest vector first")
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestStore_Query_RespectsK(t *testing.T) {
	store := seedStore(t)

	hits, err := store.Query(context.Background(), []float32{0, 0}, 2)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestStore_Query_Empty(t *testing.T) {
	store := NewStore()

	hits, err := store.Query(context.Background(), []float32{1, 2}, 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_Add_DuplicateIDOverwrites(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	err := store.Add(ctx, []driven.Entry{{ID: "a.pdf:1:0", Text: "replaced", Embedding: []float32{5, 5}}})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "duplicate ID must not grow the store")
}
