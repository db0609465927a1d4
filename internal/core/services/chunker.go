package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clearclaim/patra/internal/core/domain"
)

// Default chunking parameters, matched to the embedding context window.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 80
)

// Chunker splits page-level document text into overlapping fixed-size
// chunks. Within a page, consecutive chunks share an overlap window so
// retrieval never loses text that straddles a cut.
//
// The chunker emits each page's chunks consecutively and in a stable
// order. Identity assignment (AssignIDs) depends on this invariant:
// the same input always produces the same chunk sequence.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker targeting size characters per chunk with
// overlap characters shared between consecutive chunks. Non-positive
// values fall back to the defaults; overlap is capped below size so the
// window always advances.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits the pages of one document into chunk drafts in document
// order. Drafts carry no ID or Ordinal; AssignIDs fills those in.
func (c *Chunker) Chunk(source string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, page := range pages {
		for _, text := range c.splitPage(page.Text) {
			chunks = append(chunks, domain.Chunk{
				Text:   text,
				Source: source,
				Page:   page.Number,
			})
		}
	}
	return chunks
}

// splitPage cuts one page's text into overlapping windows of roughly
// c.size bytes. Empty pieces after trimming are dropped.
func (c *Chunker) splitPage(text string) []string {
	var pieces []string
	n := len(text)
	start := 0
	for start < n {
		end := start + c.size
		if end >= n {
			end = n
		} else {
			end = c.breakBefore(text, start, end)
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			pieces = append(pieces, piece)
		}
		if end >= n {
			break
		}

		next := end - c.overlap
		for next > start && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			// Overlap would stall the window; skip it for this cut.
			next = end
		}
		start = next
	}
	return pieces
}

// breakBefore picks a cut point at or before end, preferring paragraph
// breaks, then line breaks, then spaces, so chunks avoid splitting
// mid-word. A separator is only used when it sits in the second half of
// the window; otherwise the hard limit wins, adjusted back to a rune
// boundary.
func (c *Chunker) breakBefore(text string, start, end int) int {
	window := text[start:end]
	half := len(window) / 2
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(window, sep); i > half {
			return start + i + len(sep)
		}
	}
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// AssignIDs enriches chunk drafts with deterministic identifiers.
//
// A running counter follows the "source:page" composite: it increments
// while consecutive chunks share a page and resets to zero when the
// page changes. Each chunk gets ID "source:page:counter". IDs are
// unique and stable only because the chunker emits a page's chunks
// consecutively in a fixed order; re-running over the same drafts
// always reproduces the same IDs.
func AssignIDs(chunks []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, len(chunks))
	lastPageID := ""
	ordinal := 0
	for i, chunk := range chunks {
		pageID := chunk.PageID()
		if i > 0 && pageID == lastPageID {
			ordinal++
		} else {
			ordinal = 0
		}
		chunk.Ordinal = ordinal
		chunk.ID = fmt.Sprintf("%s:%d", pageID, ordinal)
		lastPageID = pageID
		out[i] = chunk
	}
	return out
}
