// Package services implements the core use cases behind the driving
// ports: chunking and identity assignment, incremental ingestion,
// retrieval with context assembly, and patent analysis orchestration.
//
// Services depend only on domain types and driven ports; all
// infrastructure is injected at construction time.
package services
