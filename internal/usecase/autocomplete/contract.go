package autocomplete

import (
	"context"

	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
)

// ExhibitReader resolves the exhibit a request is scoped to.
type ExhibitReader interface {
	GetBySlug(ctx context.Context, slug string) (domex.Exhibit, error)
}

// SearchReader loads the saved search whose scope is narrowed.
type SearchReader interface {
	Get(ctx context.Context, exhibitID, id string) (domss.SavedSearch, error)
}
