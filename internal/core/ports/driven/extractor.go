package driven

import (
	"context"

	"github.com/clearclaim/patra/internal/core/domain"
)

// PageExtractor extracts page-level plain text from a source document.
type PageExtractor interface {
	// Extract returns the document's pages in order.
	// Returns domain.ErrSourceNotFound if the path does not exist.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}
