package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearclaim/patra/internal/core/domain"
	"github.com/clearclaim/patra/internal/core/ports/driven"
	"github.com/clearclaim/patra/internal/logger"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Retriever embeds a query text and performs nearest-neighbour search
// over the stored chunk embeddings.
//
// Precondition: the query is embedded with the same model used at
// ingest time. The retriever verifies the model name recorded in hit
// metadata and rejects with domain.ErrModelMismatch when it differs;
// mismatched embedding spaces would make every distance meaningless.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder driven.EmbeddingService, store driven.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Search returns the k stored chunks nearest to text, most similar
// first. An empty store or zero matches yields an empty slice, not an
// error. Each match carries the raw distance and its similarity
// percentage (a linear approximation, see domain.SimilarityFromDistance).
func (r *Retriever) Search(ctx context.Context, text string, k int) ([]domain.Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.Match{}, nil
	}

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", domain.ErrEmbeddingProvider, err)
	}

	hits, err := r.store.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	logger.Debug("Retrieved %d hits for %d-char query", len(hits), len(text))

	matches := make([]domain.Match, 0, len(hits))
	for _, hit := range hits {
		if model := hit.Metadata[metaEmbeddingModel]; model != "" && model != r.embedder.ModelName() {
			return nil, fmt.Errorf("%w: chunk %s was embedded with %q, query uses %q",
				domain.ErrModelMismatch, hit.ID, model, r.embedder.ModelName())
		}
		matches = append(matches, domain.Match{
			ID:         hit.ID,
			Text:       hit.Text,
			Metadata:   hit.Metadata,
			Distance:   hit.Distance,
			Similarity: domain.SimilarityFromDistance(hit.Distance),
		})
	}
	return matches, nil
}
