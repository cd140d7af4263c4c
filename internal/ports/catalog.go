package ports

import (
	"context"

	"budgetree/internal/domain"
)

// CatalogSearcher looks up reference price-book entries
type CatalogSearcher interface {
	// Search returns candidate entries for a free-text query. Callers treat
	// errors as "no remote results", never as fatal.
	Search(ctx context.Context, query string) ([]domain.CatalogEntry, error)

	// IsAvailable returns true if the backing service can be reached
	IsAvailable() bool
}
