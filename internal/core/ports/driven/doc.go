// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PageExtractor: Extracts page-level text from a source document
//   - EmbeddingService: Generates vector embeddings (same model at
//     ingest and query time - mismatched models make distances meaningless)
//   - VectorStore: Persists and searches embeddings (Chroma)
//   - LLMService: Generates answers and analysis text
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
