package services

import (
	"context"
	"strings"
	"sync"

	"github.com/clearclaim/patra/internal/core/domain"
	"github.com/clearclaim/patra/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExtractor implements driven.PageExtractor for testing.
type mockExtractor struct {
	pages []domain.Page
	err   error
}

func (m *mockExtractor) Extract(_ context.Context, _ string) ([]domain.Page, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pages, nil
}

// mockEmbedder implements driven.EmbeddingService for testing.
// Texts map to fixed vectors; unknown texts embed to a unit vector.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	embedErr error
	model    string
	batches  [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.mu.Unlock()

	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockLLM implements driven.LLMService for testing.
// Responses are matched by prompt substring; prompts are recorded for
// assertions. Prompts containing any failSubstrings entry fail.
type mockLLM struct {
	mu             sync.Mutex
	responses      map[string]string
	failSubstrings []string
	failErr        error
	prompts        []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	for _, s := range m.failSubstrings {
		if strings.Contains(prompt, s) {
			if m.failErr != nil {
				return "", m.failErr
			}
			return "", context.DeadlineExceeded
		}
	}
	for key, response := range m.responses {
		if strings.Contains(prompt, key) {
			return response, nil
		}
	}
	return "generated", nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) recordedPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
