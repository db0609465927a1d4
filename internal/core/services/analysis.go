package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/clearclaim/patra/internal/core/domain"
	"github.com/clearclaim/patra/internal/core/ports/driven"
	"github.com/clearclaim/patra/internal/core/ports/driving"
	"github.com/clearclaim/patra/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// Excerpt caps per analysis step. They bound token cost, not correctness.
const (
	summaryTextCap        = 5000
	noveltyTextCap        = 3000
	issuesTextCap         = 4000
	recommendationsCap    = 4000
	similarPatentsTopK    = 5
	similarExcerptDisplay = 200
)

// fallbackNoveltyScore is used when the model's novelty response
// contains no parseable number.
const fallbackNoveltyScore = 60

const (
	summaryPrompt = "Summarize the following patent proposal in 3-5 sentences:\n%s"

	noveltyPrompt = "Rate the novelty of this patent on a scale of 0 to 100. " +
		"Consider technical innovation and prior art. " +
		"Return only the number:\n%s"

	issuesPrompt = "List 3-5 potential legal, technical, or novelty issues with this patent. " +
		"Use concise bullet points:\n%s"

	improvementsPrompt = "Suggest 3-5 specific improvements to strengthen this patent:\n%s"
)

// AnalysisService reconstructs an ingested document from its stored
// chunks and drives the analysis steps over it: summary, novelty score,
// potential issues, recommendations, and a corpus-wide similarity
// search.
//
// The generation steps are independent of each other and run
// concurrently. A failed step logs its error and leaves its fallback
// value in place; the analysis still returns with whatever the other
// steps produced (partial results over total failure).
type AnalysisService struct {
	store     driven.VectorStore
	llm       driven.LLMService
	retriever *Retriever
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(store driven.VectorStore, llm driven.LLMService, retriever *Retriever) *AnalysisService {
	return &AnalysisService{store: store, llm: llm, retriever: retriever}
}

// Analyze produces a structured analysis of the document with the
// given ID.
func (s *AnalysisService) Analyze(ctx context.Context, documentID string) (*domain.Analysis, error) {
	logger.Section("Analysis")

	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}

	chunks, err := s.store.GetByFilter(ctx, driven.Filter{metaFilenameBase: documentID})
	if err != nil {
		return nil, fmt.Errorf("fetch chunks for %q: %w", documentID, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrDocumentNotFound, documentID)
	}

	fullText := reconstructText(chunks)
	logger.Debug("Reconstructed %d chars from %d chunks of %q", len(fullText), len(chunks), documentID)

	meta := chunks[0].Metadata
	analysis := &domain.Analysis{
		Title:           metaOr(meta, "title", documentID),
		Date:            metaOr(meta, "date", "Unknown Date"),
		Applicant:       metaOr(meta, "applicant", "Unknown Applicant"),
		NoveltyScore:    fallbackNoveltyScore,
		PotentialIssues: []string{},
		Recommendations: []string{},
		SimilarPatents:  []domain.SimilarPatent{},
	}

	// The five steps share no state beyond the reconstructed text and
	// each write a distinct field, so they fan out without locking.
	var wg sync.WaitGroup
	runStep := func(name string, step func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := step(); err != nil {
				logger.Error("analysis step %s for %q: %v", name, documentID, err)
			}
		}()
	}

	runStep("summary", func() error {
		summary, err := s.generate(ctx, summaryPrompt, fullText, summaryTextCap)
		if err != nil {
			return err
		}
		analysis.Summary = summary
		return nil
	})

	runStep("novelty", func() error {
		response, err := s.generate(ctx, noveltyPrompt, fullText, noveltyTextCap)
		if err != nil {
			return err
		}
		analysis.NoveltyScore = parseNoveltyScore(response)
		return nil
	})

	runStep("issues", func() error {
		response, err := s.generate(ctx, issuesPrompt, fullText, issuesTextCap)
		if err != nil {
			return err
		}
		analysis.PotentialIssues = parseBulletList(response)
		return nil
	})

	runStep("recommendations", func() error {
		response, err := s.generate(ctx, improvementsPrompt, fullText, recommendationsCap)
		if err != nil {
			return err
		}
		analysis.Recommendations = parseBulletList(response)
		return nil
	})

	runStep("similar", func() error {
		similar, err := s.findSimilar(ctx, fullText)
		if err != nil {
			return err
		}
		analysis.SimilarPatents = similar
		return nil
	})

	wg.Wait()
	return analysis, nil
}

// generate caps the text and runs one generation call.
func (s *AnalysisService) generate(ctx context.Context, promptTemplate, text string, maxChars int) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, domain.Excerpt(text, maxChars))
	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationProvider, err)
	}
	return strings.TrimSpace(response), nil
}

// findSimilar searches the whole corpus, not just this document, using
// the reconstructed text as the query.
func (s *AnalysisService) findSimilar(ctx context.Context, fullText string) ([]domain.SimilarPatent, error) {
	matches, err := s.retriever.Search(ctx, fullText, similarPatentsTopK)
	if err != nil {
		return nil, err
	}

	similar := make([]domain.SimilarPatent, 0, len(matches))
	for _, match := range matches {
		similar = append(similar, domain.SimilarPatent{
			ID:         match.ID,
			Title:      metaOr(match.Metadata, "title", "Untitled"),
			Similarity: match.Similarity,
			Date:       metaOr(match.Metadata, "date", "Unknown"),
			Assignee:   metaOr(match.Metadata, "assignee", "N/A"),
			Excerpt:    domain.Excerpt(match.Text, similarExcerptDisplay),
		})
	}
	return similar, nil
}

// reconstructText joins chunk texts in document order. Chunks are
// re-sorted by their stored page and ordinal metadata first: the store
// returns them in insertion order, which is not guaranteed to survive
// compaction or concurrent ingestion.
func reconstructText(chunks []driven.StoredChunk) string {
	ordered := make([]driven.StoredChunk, len(chunks))
	copy(ordered, chunks)

	sort.SliceStable(ordered, func(i, j int) bool {
		pi, oi := chunkPosition(ordered[i])
		pj, oj := chunkPosition(ordered[j])
		if pi != pj {
			return pi < pj
		}
		return oi < oj
	})

	texts := make([]string, len(ordered))
	for i, chunk := range ordered {
		texts[i] = chunk.Text
	}
	return strings.Join(texts, "\n\n")
}

// chunkPosition reads the page and ordinal a chunk was cut at.
// Chunks missing the metadata sort after positioned ones.
func chunkPosition(chunk driven.StoredChunk) (int, int) {
	page, err := strconv.Atoi(chunk.Metadata[metaPage])
	if err != nil {
		page = int(^uint(0) >> 1)
	}
	ordinal, err := strconv.Atoi(chunk.Metadata[metaOrdinal])
	if err != nil {
		ordinal = int(^uint(0) >> 1)
	}
	return page, ordinal
}

// parseNoveltyScore extracts the first number in the model's response
// and clamps it to [0, 100]. The prompt asks for a bare number, but
// models wrap it in prose often enough ("The novelty score is 85 out
// of 100") that only the first digit run is trusted. Responses with no
// digits fall back to a neutral score.
func parseNoveltyScore(response string) int {
	var digits strings.Builder
	for _, r := range response {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		} else if digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return fallbackNoveltyScore
	}

	score, err := strconv.Atoi(digits.String())
	if err != nil {
		// Digit run too long for an int; treat as unparseable.
		return fallbackNoveltyScore
	}
	if score > 100 {
		return 100
	}
	return score
}

// parseBulletList splits a generated response into list items,
// stripping bullet markers and surrounding whitespace.
func parseBulletList(response string) []string {
	var items []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "•-* \t")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	if items == nil {
		return []string{}
	}
	return items
}

// metaOr reads a metadata key with a fallback for missing values.
func metaOr(meta map[string]string, key, fallback string) string {
	if v := meta[key]; v != "" {
		return v
	}
	return fallback
}
