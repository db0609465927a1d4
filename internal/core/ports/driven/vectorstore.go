package driven

import "context"

// VectorStore persists chunk embeddings and provides filtered reads and
// nearest-neighbour search. Backed by Chroma in production.
//
// The store owns concurrency control and duplicate-ID semantics; this
// code adds no locking of its own. Entries are append-only: an ID is
// written once on first ingestion and never updated.
type VectorStore interface {
	// Add inserts the given entries. IDs already present in the store
	// are the store's to reject or overwrite; callers are expected to
	// diff against ListIDs first.
	Add(ctx context.Context, entries []Entry) error

	// ListIDs returns the IDs of all stored entries matching the filter.
	// An existence-only read: no document bodies are transferred.
	// A nil filter lists the whole collection.
	ListIDs(ctx context.Context, filter Filter) ([]string, error)

	// GetByFilter returns stored chunks whose metadata matches the
	// filter, in store order. Callers needing document order must
	// re-sort by the embedded page/ordinal metadata.
	GetByFilter(ctx context.Context, filter Filter) ([]StoredChunk, error)

	// Query returns the k nearest entries to the query embedding,
	// ascending by distance (most similar first).
	Query(ctx context.Context, embedding []float32, k int) ([]Hit, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// Filter is a metadata equality filter, e.g. {"filename_base": "doc.pdf"}.
type Filter map[string]string

// Entry is a chunk plus its embedding, the unit of insertion.
type Entry struct {
	ID        string
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

// StoredChunk is a chunk read back from the store.
type StoredChunk struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Hit is a nearest-neighbour search result.
type Hit struct {
	ID       string
	Text     string
	Metadata map[string]string

	// Distance is the raw vector distance (lower is closer).
	Distance float64
}
