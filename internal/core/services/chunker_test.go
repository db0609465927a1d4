package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/patra/internal/core/domain"
)

func TestChunker_Chunk_ShortPage(t *testing.T) {
	c := NewChunker(500, 80)

	chunks := c.Chunk("doc.pdf", []domain.Page{{Number: 1, Text: "A short claim."}})

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short claim.", chunks[0].Text)
	assert.Equal(t, "doc.pdf", chunks[0].Source)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Empty(t, chunks[0].ID, "drafts carry no ID before assignment")
}

func TestChunker_Chunk_OverlapSharedBetweenNeighbours(t *testing.T) {
	c := NewChunker(100, 20)
	words := make([]string, 80)
	for i := range words {
		words[i] = "claim"
	}
	text := strings.Join(words, " ")

	chunks := c.Chunk("doc.pdf", []domain.Page{{Number: 1, Text: text}})

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		tail := prev[len(prev)-10:]
		assert.Contains(t, chunks[i].Text, strings.TrimSpace(tail),
			"chunk %d should share a window with its predecessor", i)
	}
}

func TestChunker_Chunk_PrefersWordBoundaries(t *testing.T) {
	c := NewChunker(50, 10)
	text := strings.Repeat("boundary ", 30)

	chunks := c.Chunk("doc.pdf", []domain.Page{{Number: 1, Text: text}})

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		for _, w := range strings.Fields(ch.Text) {
			assert.Equal(t, "boundary", w)
		}
	}
}

func TestChunker_Chunk_DropsEmptyPages(t *testing.T) {
	c := NewChunker(500, 80)

	chunks := c.Chunk("doc.pdf", []domain.Page{
		{Number: 1, Text: "   \n\n  "},
		{Number: 2, Text: "Real content."},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, 2, chunks[0].Page)
}

func TestChunker_Chunk_PagesStayConsecutive(t *testing.T) {
	c := NewChunker(60, 10)
	pages := []domain.Page{
		{Number: 1, Text: strings.Repeat("first page text ", 20)},
		{Number: 2, Text: strings.Repeat("second page text ", 20)},
	}

	chunks := c.Chunk("doc.pdf", pages)

	lastPage := 0
	for _, ch := range chunks {
		assert.GreaterOrEqual(t, ch.Page, lastPage, "pages must not interleave")
		lastPage = ch.Page
	}
}

func TestNewChunker_OverlapCappedBelowSize(t *testing.T) {
	c := NewChunker(100, 200)
	text := strings.Repeat("word ", 100)

	// Must terminate and make progress despite the degenerate overlap.
	chunks := c.Chunk("doc.pdf", []domain.Page{{Number: 1, Text: text}})
	assert.NotEmpty(t, chunks)
}

func TestAssignIDs_SpecExample(t *testing.T) {
	// Page 1 produces 3 chunks, page 2 produces 2.
	drafts := []domain.Chunk{
		{Source: "doc.pdf", Page: 1, Text: "a"},
		{Source: "doc.pdf", Page: 1, Text: "b"},
		{Source: "doc.pdf", Page: 1, Text: "c"},
		{Source: "doc.pdf", Page: 2, Text: "d"},
		{Source: "doc.pdf", Page: 2, Text: "e"},
	}

	chunks := AssignIDs(drafts)

	ids := make([]string, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ID
	}
	assert.Equal(t, []string{
		"doc.pdf:1:0", "doc.pdf:1:1", "doc.pdf:1:2",
		"doc.pdf:2:0", "doc.pdf:2:1",
	}, ids)
}

func TestAssignIDs_Deterministic(t *testing.T) {
	drafts := []domain.Chunk{
		{Source: "x.pdf", Page: 1, Text: "a"},
		{Source: "x.pdf", Page: 1, Text: "b"},
		{Source: "x.pdf", Page: 2, Text: "c"},
		{Source: "x.pdf", Page: 3, Text: "d"},
	}

	first := AssignIDs(drafts)
	second := AssignIDs(drafts)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Ordinal, second[i].Ordinal)
	}
}

func TestAssignIDs_CounterResetsPerPage(t *testing.T) {
	drafts := []domain.Chunk{
		{Source: "a.pdf", Page: 5, Text: "a"},
		{Source: "a.pdf", Page: 5, Text: "b"},
		{Source: "b.pdf", Page: 5, Text: "c"},
	}

	chunks := AssignIDs(drafts)

	assert.Equal(t, "a.pdf:5:0", chunks[0].ID)
	assert.Equal(t, "a.pdf:5:1", chunks[1].ID)
	assert.Equal(t, "b.pdf:5:0", chunks[2].ID, "source change resets the counter")
}

func TestAssignIDs_DoesNotMutateInput(t *testing.T) {
	drafts := []domain.Chunk{{Source: "doc.pdf", Page: 1, Text: "a"}}

	_ = AssignIDs(drafts)

	assert.Empty(t, drafts[0].ID)
}

func TestAssignIDs_Empty(t *testing.T) {
	assert.Empty(t, AssignIDs(nil))
}
