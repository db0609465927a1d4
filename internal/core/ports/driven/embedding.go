package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The same model MUST be used for ingestion and query embeddings;
// vectors from different models share no geometry and nearest-neighbour
// results against them are meaningless. The ingest pipeline records the
// model name in chunk metadata so a mismatch is detected rather than
// silently producing nonsense similarity scores.
//
// Implementations may include:
//   - Google Gemini (text-embedding-004)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
