package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrSourceNotFound indicates the input document to ingest does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrDocumentNotFound indicates no indexed chunks match the requested
	// document ID. This signals "not ingested", not a provider failure.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmbeddingProvider indicates an embedding call failed.
	// The failure is batch-scoped: no chunk of the failed batch is committed.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrGenerationProvider indicates a generation call failed.
	// Analysis steps surface it individually so other steps can still succeed.
	ErrGenerationProvider = errors.New("generation provider failure")

	// ErrModelMismatch indicates stored embeddings were produced by a
	// different embedding model than the one configured. Query and ingest
	// reject rather than silently produce meaningless similarity scores.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
