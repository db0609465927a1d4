// Package chroma provides a VectorStore adapter backed by a Chroma
// server, using its REST API directly.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/clearclaim/patra/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultCollection = "patent_chunks"
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for the Chroma store.
type Config struct {
	// BaseURL is the Chroma server URL (default: http://localhost:8000).
	BaseURL string

	// Collection is the collection name (default: patent_chunks).
	// Fixed for the life of the index; there is no migration logic.
	Collection string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store is a minimal REST client to Chroma. The collection is created
// on first use if missing; Chroma's own duplicate-ID semantics and
// concurrency control are relied upon, no locking happens here.
type Store struct {
	client     *http.Client
	baseURL    string
	collection string

	mu           sync.Mutex
	collectionID string
}

// NewStore creates a new Chroma store client. The collection is
// resolved lazily on the first call that needs it.
func NewStore(cfg Config) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
	}
}

// collectionResponse is the create/get collection response format.
type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// addRequest is the /add request format.
type addRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
}

// getRequest is the /get request format.
type getRequest struct {
	Where   map[string]any `json:"where,omitempty"`
	Include []string       `json:"include"`
}

// getResponse is the /get response format.
type getResponse struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

// queryRequest is the /query request format.
type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// queryResponse is the /query response format. Results come nested per
// query embedding; this client always sends exactly one.
type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Add inserts entries into the collection.
func (s *Store) Add(ctx context.Context, entries []driven.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return err
	}

	req := addRequest{
		IDs:        make([]string, len(entries)),
		Embeddings: make([][]float32, len(entries)),
		Documents:  make([]string, len(entries)),
		Metadatas:  make([]map[string]any, len(entries)),
	}
	for i, entry := range entries {
		req.IDs[i] = entry.ID
		req.Embeddings[i] = entry.Embedding
		req.Documents[i] = entry.Text
		meta := make(map[string]any, len(entry.Metadata))
		for k, v := range entry.Metadata {
			meta[k] = v
		}
		req.Metadatas[i] = meta
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/add", s.baseURL, collID)
	return s.post(ctx, url, req, nil)
}

// ListIDs returns the IDs matching the filter. Sends include:[] so only
// IDs move over the wire.
func (s *Store) ListIDs(ctx context.Context, filter driven.Filter) ([]string, error) {
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	var resp getResponse
	url := fmt.Sprintf("%s/api/v1/collections/%s/get", s.baseURL, collID)
	if err := s.post(ctx, url, getRequest{Where: whereClause(filter), Include: []string{}}, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// GetByFilter returns stored chunks matching the filter, in store order.
func (s *Store) GetByFilter(ctx context.Context, filter driven.Filter) ([]driven.StoredChunk, error) {
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	var resp getResponse
	url := fmt.Sprintf("%s/api/v1/collections/%s/get", s.baseURL, collID)
	req := getRequest{Where: whereClause(filter), Include: []string{"documents", "metadatas"}}
	if err := s.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	chunks := make([]driven.StoredChunk, len(resp.IDs))
	for i, id := range resp.IDs {
		chunk := driven.StoredChunk{ID: id}
		if i < len(resp.Documents) {
			chunk.Text = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			chunk.Metadata = stringifyMetadata(resp.Metadatas[i])
		}
		chunks[i] = chunk
	}
	return chunks, nil
}

// Query returns the k nearest entries, ascending by distance.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]driven.Hit, error) {
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	// Chroma rejects n_results greater than the collection size.
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []driven.Hit{}, nil
	}
	if k > count {
		k = count
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        k,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp queryResponse
	url := fmt.Sprintf("%s/api/v1/collections/%s/query", s.baseURL, collID)
	if err := s.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return []driven.Hit{}, nil
	}

	ids := resp.IDs[0]
	hits := make([]driven.Hit, len(ids))
	for i, id := range ids {
		hit := driven.Hit{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = stringifyMetadata(resp.Metadatas[0][i])
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		hits[i] = hit
	}
	return hits, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/count", s.baseURL, collID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("chroma count: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("chroma count: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("chroma count (status %d): %s", resp.StatusCode, string(body))
	}

	count, err := strconv.Atoi(string(bytes.TrimSpace(body)))
	if err != nil {
		return 0, fmt.Errorf("chroma count: parse %q: %w", string(body), err)
	}
	return count, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// ensureCollection resolves the collection ID, creating the collection
// on the server if it does not exist yet.
func (s *Store) ensureCollection(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collectionID != "" {
		return s.collectionID, nil
	}

	var resp collectionResponse
	url := s.baseURL + "/api/v1/collections"
	body := map[string]any{"name": s.collection, "get_or_create": true}
	if err := s.post(ctx, url, body, &resp); err != nil {
		return "", fmt.Errorf("ensure collection %q: %w", s.collection, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("ensure collection %q: server returned no id", s.collection)
	}

	s.collectionID = resp.ID
	return s.collectionID, nil
}

func (s *Store) post(ctx context.Context, url string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("chroma error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// whereClause converts a metadata filter to Chroma's where syntax.
// A nil or empty filter means no clause at all.
func whereClause(filter driven.Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	where := make(map[string]any, len(filter))
	for k, v := range filter {
		where[k] = v
	}
	return where
}

// stringifyMetadata flattens Chroma's loosely typed metadata into the
// string map the core works with.
func stringifyMetadata(meta map[string]any) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
