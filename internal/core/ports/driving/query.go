package driving

import (
	"context"

	"github.com/clearclaim/patra/internal/core/domain"
)

// QueryService answers free-text questions over the indexed corpus.
type QueryService interface {
	// Ask retrieves the chunks most relevant to the question and
	// generates an answer grounded on them. When nothing relevant is
	// stored it returns the fallback answer with empty sources, not
	// an error.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

// AnalysisService produces a structured analysis of one ingested document.
type AnalysisService interface {
	// Analyze reconstructs the document's text from its stored chunks
	// and runs the analysis steps over it.
	// Returns domain.ErrDocumentNotFound when no chunks match the ID.
	Analyze(ctx context.Context, documentID string) (*domain.Analysis, error)
}
