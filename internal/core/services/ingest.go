package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/clearclaim/patra/internal/core/domain"
	"github.com/clearclaim/patra/internal/core/ports/driven"
	"github.com/clearclaim/patra/internal/core/ports/driving"
	"github.com/clearclaim/patra/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize bounds how many chunks go to the embedding provider
// per call. A batch either commits fully or not at all; earlier batches
// of the same run may already be committed when a later one fails.
const embedBatchSize = 64

// Metadata keys written with every chunk.
const (
	metaFilenameBase   = "filename_base"
	metaPage           = "page"
	metaOrdinal        = "ordinal"
	metaEmbeddingModel = "embedding_model"
)

// IngestService makes the vector store's chunk-ID set a superset of the
// IDs produced from a source document, embedding and inserting only
// chunks whose IDs are not stored yet. Re-ingesting an unchanged
// document is a no-op.
type IngestService struct {
	extractor driven.PageExtractor
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	chunker   *Chunker
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	extractor driven.PageExtractor,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	chunker *Chunker,
) *IngestService {
	if chunker == nil {
		chunker = NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &IngestService{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		chunker:   chunker,
	}
}

// Ingest extracts, chunks, embeds and stores the document at path.
func (s *IngestService) Ingest(ctx context.Context, path string) (*driving.IngestResult, error) {
	runID := uuid.NewString()
	docID := filepath.Base(path)

	logger.Section("Ingest")
	logger.Debug("Run %s: ingesting %q as document %q", runID, path, docID)

	pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", path, err)
	}

	chunks := AssignIDs(s.chunker.Chunk(docID, pages))
	logger.Debug("Run %s: %d pages split into %d chunks", runID, len(pages), len(chunks))

	if err := s.checkModel(ctx); err != nil {
		return nil, err
	}

	newChunks, err := s.partition(ctx, chunks)
	if err != nil {
		return nil, err
	}

	result := &driving.IngestResult{
		RunID:         runID,
		DocumentID:    docID,
		Pages:         len(pages),
		TotalChunks:   len(chunks),
		NewChunks:     len(newChunks),
		SkippedChunks: len(chunks) - len(newChunks),
	}

	if len(newChunks) == 0 {
		logger.Info("Run %s: index already up to date", runID)
		return result, nil
	}

	for start := 0; start < len(newChunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(newChunks))
		if err := s.insertBatch(ctx, docID, newChunks[start:end]); err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
	}

	logger.Info("Run %s: added %d new chunks, skipped %d", runID, result.NewChunks, result.SkippedChunks)
	return result, nil
}

// partition splits freshly identified chunks into new and
// already-present by diffing against the stored ID set. Duplicate IDs
// within the batch itself count as already-present from their second
// occurrence on.
func (s *IngestService) partition(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	storedIDs, err := s.store.ListIDs(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list stored ids: %w", err)
	}

	seen := make(map[string]struct{}, len(storedIDs))
	for _, id := range storedIDs {
		seen[id] = struct{}{}
	}

	var fresh []domain.Chunk
	for _, chunk := range chunks {
		if _, ok := seen[chunk.ID]; ok {
			logger.Debug("Skipping stored chunk %s", chunk.ID)
			continue
		}
		seen[chunk.ID] = struct{}{}
		fresh = append(fresh, chunk)
	}
	return fresh, nil
}

// insertBatch embeds one batch and inserts it. An embedding failure
// aborts before anything of this batch reaches the store.
func (s *IngestService) insertBatch(ctx context.Context, docID string, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingProvider, len(embeddings), len(chunks))
	}

	entries := make([]driven.Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = driven.Entry{
			ID:   chunk.ID,
			Text: chunk.Text,
			Metadata: map[string]string{
				metaFilenameBase:   docID,
				metaPage:           fmt.Sprintf("%d", chunk.Page),
				metaOrdinal:        fmt.Sprintf("%d", chunk.Ordinal),
				metaEmbeddingModel: s.embedder.ModelName(),
			},
			Embedding: embeddings[i],
		}
	}

	if err := s.store.Add(ctx, entries); err != nil {
		return fmt.Errorf("store add: %w", err)
	}
	return nil
}

// checkModel rejects ingestion into an index built with a different
// embedding model.
func (s *IngestService) checkModel(ctx context.Context) error {
	return verifyEmbeddingModel(ctx, s.store, s.embedder.ModelName())
}

// verifyEmbeddingModel confirms every stored chunk was embedded with
// the configured model. The model name travels in chunk metadata, so
// an existence-only filtered listing is enough; no bodies move.
func verifyEmbeddingModel(ctx context.Context, store driven.VectorStore, model string) error {
	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count stored chunks: %w", err)
	}
	if total == 0 {
		return nil
	}

	matching, err := store.ListIDs(ctx, driven.Filter{metaEmbeddingModel: model})
	if err != nil {
		return fmt.Errorf("list ids by model: %w", err)
	}
	if len(matching) != total {
		return fmt.Errorf("%w: %d of %d stored chunks were not embedded with %q",
			domain.ErrModelMismatch, total-len(matching), total, model)
	}
	return nil
}
