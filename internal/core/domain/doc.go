// Package domain defines the core business entities for Patra.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: A single page of extracted document text
//   - Chunk: A bounded slice of a document, the unit of embedding and retrieval
//   - Match: A retrieval hit with distance and derived similarity
//   - Answer: A generated answer with its supporting sources
//   - Analysis: A structured patent analysis
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
