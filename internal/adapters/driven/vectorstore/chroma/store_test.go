package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/patra/internal/core/ports/driven"
)

// fakeChroma is a minimal Chroma server covering the endpoints the
// client uses.
type fakeChroma struct {
	t *testing.T

	addRequests   []addRequest
	getResponse   getResponse
	queryResponse queryResponse
	count         int
}

func (f *fakeChroma) handler() http.Handler {
	// Method+path patterns in ServeMux need Go 1.22; check the method
	// inside the handler so this runs on older toolchains too.
	handle := func(mux *http.ServeMux, method, path string, fn http.HandlerFunc) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			fn(w, r)
		})
	}

	mux := http.NewServeMux()
	handle(mux, http.MethodPost, "/api/v1/collections", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, collectionResponse{ID: "coll-uuid", Name: "patent_chunks"})
	})
	handle(mux, http.MethodPost, "/api/v1/collections/coll-uuid/add", func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.addRequests = append(f.addRequests, req)
		w.WriteHeader(http.StatusCreated)
	})
	handle(mux, http.MethodPost, "/api/v1/collections/coll-uuid/get", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, f.getResponse)
	})
	handle(mux, http.MethodPost, "/api/v1/collections/coll-uuid/query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, f.queryResponse)
	})
	handle(mux, http.MethodGet, "/api/v1/collections/coll-uuid/count", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, f.count)
	})
	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestStore(t *testing.T, fake *fakeChroma) *Store {
	t.Helper()
	fake.t = t
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewStore(Config{BaseURL: server.URL})
}

func TestStore_Add_SendsEntries(t *testing.T) {
	fake := &fakeChroma{}
	store := newTestStore(t, fake)

	err := store.Add(context.Background(), []driven.Entry{{
		ID:        "doc.pdf:1:0",
		Text:      "chunk text",
		Metadata:  map[string]string{"filename_base": "doc.pdf"},
		Embedding: []float32{0.1, 0.2},
	}})

	require.NoError(t, err)
	require.Len(t, fake.addRequests, 1)
	sent := fake.addRequests[0]
	assert.Equal(t, []string{"doc.pdf:1:0"}, sent.IDs)
	assert.Equal(t, []string{"chunk text"}, sent.Documents)
	assert.Equal(t, "doc.pdf", sent.Metadatas[0]["filename_base"])
}

func TestStore_Add_EmptyIsNoop(t *testing.T) {
	fake := &fakeChroma{}
	store := newTestStore(t, fake)

	require.NoError(t, store.Add(context.Background(), nil))
	assert.Empty(t, fake.addRequests)
}

func TestStore_ListIDs(t *testing.T) {
	fake := &fakeChroma{getResponse: getResponse{IDs: []string{"a:1:0", "a:1:1"}}}
	store := newTestStore(t, fake)

	ids, err := store.ListIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"a:1:0", "a:1:1"}, ids)
}

func TestStore_GetByFilter_Stringifies(t *testing.T) {
	fake := &fakeChroma{getResponse: getResponse{
		IDs:       []string{"a:1:0"},
		Documents: []string{"text"},
		Metadatas: []map[string]any{{"page": float64(1), "filename_base": "a.pdf"}},
	}}
	store := newTestStore(t, fake)

	chunks, err := store.GetByFilter(context.Background(), driven.Filter{"filename_base": "a.pdf"})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "1", chunks[0].Metadata["page"], "numeric metadata becomes its string form")
	assert.Equal(t, "a.pdf", chunks[0].Metadata["filename_base"])
}

func TestStore_Query_UnpacksNestedResults(t *testing.T) {
	fake := &fakeChroma{
		count: 2,
		queryResponse: queryResponse{
			IDs:       [][]string{{"a:1:0", "b:1:0"}},
			Documents: [][]string{{"near", "far"}},
			Metadatas: [][]map[string]any{{{"title": "A"}, {"title": "B"}}},
			Distances: [][]float64{{0.1, 0.8}},
		},
	}
	store := newTestStore(t, fake)

	hits, err := store.Query(context.Background(), []float32{0, 0}, 5)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a:1:0", hits[0].ID)
	assert.Equal(t, "near", hits[0].Text)
	assert.Equal(t, "A", hits[0].Metadata["title"])
	assert.InDelta(t, 0.1, hits[0].Distance, 1e-9)
}

func TestStore_Query_EmptyCollection(t *testing.T) {
	fake := &fakeChroma{count: 0}
	store := newTestStore(t, fake)

	hits, err := store.Query(context.Background(), []float32{0, 0}, 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_Count(t *testing.T) {
	fake := &fakeChroma{count: 42}
	store := newTestStore(t, fake)

	count, err := store.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestStore_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	store := NewStore(Config{BaseURL: server.URL})

	_, err := store.ListIDs(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
