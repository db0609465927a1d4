package cli

import (
	"context"

	"github.com/clearclaim/patra/internal/core/domain"
	"github.com/clearclaim/patra/internal/core/ports/driving"
)

type mockIngestService struct {
	result *driving.IngestResult
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, _ string) (*driving.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockQueryService struct {
	answer *domain.Answer
	err    error
}

func (m *mockQueryService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type mockAnalysisService struct {
	analysis *domain.Analysis
	err      error
}

func (m *mockAnalysisService) Analyze(_ context.Context, _ string) (*domain.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

// setupTestServices swaps in happy-path mocks and returns a cleanup
// func restoring whatever was there before.
func setupTestServices() func() {
	oldIngest := ingestService
	oldQuery := queryService
	oldAnalysis := analysisService

	ingestService = &mockIngestService{
		result: &driving.IngestResult{
			RunID:         "run-1",
			DocumentID:    "proposal.pdf",
			Pages:         4,
			TotalChunks:   12,
			NewChunks:     10,
			SkippedChunks: 2,
		},
	}
	queryService = &mockQueryService{
		answer: &domain.Answer{
			Text:    "The patent covers a widget.",
			Sources: []string{"proposal.pdf:1:0", "proposal.pdf:2:1"},
		},
	}
	analysisService = &mockAnalysisService{
		analysis: &domain.Analysis{
			Title:           "Widget Patent",
			Date:            "2024-03-01",
			Applicant:       "Acme Corp",
			Summary:         "A widget with novel properties.",
			NoveltyScore:    85,
			PotentialIssues: []string{"Prior art in widget space"},
			Recommendations: []string{"Narrow claim 3"},
			SimilarPatents: []domain.SimilarPatent{
				{ID: "other.pdf:1:0", Title: "Other Widget", Similarity: 91, Excerpt: "A similar widget."},
			},
		},
	}

	return func() {
		ingestService = oldIngest
		queryService = oldQuery
		analysisService = oldAnalysis
	}
}
