package domain

import "fmt"

// Page is a single page of text extracted from a source document.
type Page struct {
	// Number is the 1-based page number within the document.
	Number int

	// Text is the extracted plain text of the page.
	Text string
}

// Chunk represents a bounded slice of a document's text, the unit of
// embedding and retrieval.
//
// A chunk's identity is derived from its position, not its content:
// ID is "source:page:ordinal" where ordinal counts chunks within the
// page. Identity assignment is deterministic as long as the chunker
// emits each page's chunks consecutively and in a stable order, so
// re-ingesting an unchanged document reproduces the same IDs.
type Chunk struct {
	// ID is the stable identifier "source:page:ordinal".
	// Empty until assigned by the identity assigner.
	ID string

	// Text is the chunk's text content.
	Text string

	// Source is the originating document identifier (file name).
	Source string

	// Page is the 1-based page number the chunk was cut from.
	Page int

	// Ordinal is the chunk's position within its page.
	Ordinal int

	// Metadata contains chunk-level key-value pairs persisted
	// alongside the embedding (filename_base, title, date, ...).
	Metadata map[string]string
}

// PageID returns the "source:page" composite the ordinal counter runs over.
func (c Chunk) PageID() string {
	return fmt.Sprintf("%s:%d", c.Source, c.Page)
}

// Match is a single retrieval hit, ephemeral to one query.
type Match struct {
	// ID is the matched chunk's identifier.
	ID string

	// Text is the stored chunk text.
	Text string

	// Metadata is the stored chunk metadata.
	Metadata map[string]string

	// Distance is the raw vector distance (lower is closer).
	Distance float64

	// Similarity is the distance converted to a 0-100 percentage.
	Similarity float64
}

// Answer is the result of a question answered over the index.
type Answer struct {
	// Text is the generated answer, or the fallback message when
	// no relevant chunks were found.
	Text string `json:"answer"`

	// Sources lists the identifiers of the chunks that supported
	// the answer, deduplicated in first-seen order.
	Sources []string `json:"sources"`
}

// SimilarityFromDistance converts a vector distance to a similarity
// percentage clamped to [0, 100].
//
// The conversion (100 - distance*100) is a linear heuristic, not a
// probability: it is only meaningful for ranking hits produced by the
// same embedding model.
func SimilarityFromDistance(distance float64) float64 {
	s := 100 - distance*100
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Excerpt truncates s to at most n characters for display, appending
// an ellipsis when text was cut. The full text is kept for prompting;
// this only bounds what is shown to users.
func Excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
