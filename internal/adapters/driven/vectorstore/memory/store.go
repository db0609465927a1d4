// Package memory provides an in-process VectorStore for tests and
// local development. Distances are squared Euclidean, matching the
// default metric of the Chroma backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/clearclaim/patra/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore.
// Safe for concurrent readers and append-only writers.
type Store struct {
	mu      sync.RWMutex
	entries map[string]driven.Entry
	order   []string
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{entries: make(map[string]driven.Entry)}
}

// Add inserts entries. A duplicate ID overwrites the stored entry,
// mirroring Chroma's upsert-on-duplicate behaviour.
func (s *Store) Add(_ context.Context, entries []driven.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		if _, ok := s.entries[entry.ID]; !ok {
			s.order = append(s.order, entry.ID)
		}
		s.entries[entry.ID] = entry
	}
	return nil
}

// ListIDs returns the IDs of entries matching the filter, in insertion order.
func (s *Store) ListIDs(_ context.Context, filter driven.Filter) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if matches(s.entries[id].Metadata, filter) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetByFilter returns stored chunks matching the filter, in insertion order.
func (s *Store) GetByFilter(_ context.Context, filter driven.Filter) ([]driven.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []driven.StoredChunk
	for _, id := range s.order {
		entry := s.entries[id]
		if matches(entry.Metadata, filter) {
			chunks = append(chunks, driven.StoredChunk{
				ID:       entry.ID,
				Text:     entry.Text,
				Metadata: entry.Metadata,
			})
		}
	}
	return chunks, nil
}

// Query returns the k nearest entries by squared Euclidean distance.
func (s *Store) Query(_ context.Context, embedding []float32, k int) ([]driven.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.Hit, 0, len(s.order))
	for _, id := range s.order {
		entry := s.entries[id]
		hits = append(hits, driven.Hit{
			ID:       entry.ID,
			Text:     entry.Text,
			Metadata: entry.Metadata,
			Distance: sqDistance(embedding, entry.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func matches(metadata map[string]string, filter driven.Filter) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

// sqDistance is the squared Euclidean distance. Vectors of different
// lengths treat missing components as zero.
func sqDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = float64(a[i])
		}
		if i < len(b) {
			bv = float64(b[i])
		}
		d := av - bv
		sum += d * d
	}
	return sum
}
