package driving

import "context"

// IngestService ingests a source document into the vector index.
type IngestService interface {
	// Ingest extracts, chunks, embeds and stores the document at path.
	// Only chunks whose IDs are not already stored are embedded and
	// inserted; re-ingesting an unchanged document adds nothing.
	// Returns domain.ErrSourceNotFound if path does not exist.
	Ingest(ctx context.Context, path string) (*IngestResult, error)
}

// IngestResult reports what one ingest run did.
type IngestResult struct {
	// RunID uniquely identifies this ingest run in logs.
	RunID string `json:"run_id"`

	// DocumentID is the chunk-grouping key (file name) callers use
	// for later analysis requests.
	DocumentID string `json:"document_id"`

	// Pages is the number of pages extracted.
	Pages int `json:"pages"`

	// TotalChunks is the number of chunks produced by splitting.
	TotalChunks int `json:"total_chunks"`

	// NewChunks is the number of chunks embedded and inserted.
	NewChunks int `json:"new_chunks"`

	// SkippedChunks is the number of chunks already present.
	SkippedChunks int `json:"skipped_chunks"`
}
