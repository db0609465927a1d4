package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearclaim/patra/internal/core/domain"
	"github.com/clearclaim/patra/internal/core/ports/driven"
	"github.com/clearclaim/patra/internal/core/ports/driving"
	"github.com/clearclaim/patra/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// FallbackAnswer is returned when retrieval finds nothing relevant.
// An empty result is a defined state, not an error.
const FallbackAnswer = "I couldn't find any relevant information in the documents."

const answerPromptTemplate = `Based on the following context, please answer the question.
Context:
%s

Question: %s

Answer:`

// QueryService answers free-text questions by retrieving the most
// relevant chunks and conditioning the generative model on them.
type QueryService struct {
	retriever *Retriever
	llm       driven.LLMService
	topK      int
}

// NewQueryService creates a new query service. topK <= 0 uses DefaultTopK.
func NewQueryService(retriever *Retriever, llm driven.LLMService, topK int) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryService{retriever: retriever, llm: llm, topK: topK}
}

// Ask answers the question over the indexed corpus.
func (s *QueryService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Query")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	matches, err := s.retriever.Search(ctx, question, s.topK)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		logger.Debug("No relevant chunks, returning fallback answer")
		return &domain.Answer{Text: FallbackAnswer, Sources: []string{}}, nil
	}

	contextText, sources := assembleContext(matches)
	prompt := fmt.Sprintf(answerPromptTemplate, contextText, question)

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationProvider, err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(answer),
		Sources: sources,
	}, nil
}

// assembleContext concatenates match texts under positional labels and
// collects source identifiers, deduplicated in first-seen order. The
// identifier prefers the chunk's title metadata, then its ID, then the
// positional label.
func assembleContext(matches []domain.Match) (string, []string) {
	parts := make([]string, 0, len(matches))
	var sources []string
	seen := make(map[string]struct{}, len(matches))

	for i, match := range matches {
		parts = append(parts, fmt.Sprintf("Context Chunk %d:\n%s", i+1, match.Text))

		source := match.Metadata["title"]
		if source == "" {
			source = match.ID
		}
		if source == "" {
			source = fmt.Sprintf("Chunk %d", i+1)
		}
		if _, ok := seen[source]; !ok {
			seen[source] = struct{}{}
			sources = append(sources, source)
		}
	}

	return strings.Join(parts, "\n\n"), sources
}
