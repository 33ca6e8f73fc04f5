package savedsearch

import (
	"context"

	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
)

// Repository defines the storage contract for saved searches.
type Repository interface {
	Create(ctx context.Context, s domss.SavedSearch) error
	Get(ctx context.Context, exhibitID, id string) (domss.SavedSearch, error)
	List(ctx context.Context, exhibitID string) (domss.Collection, error)
	Update(ctx context.Context, s domss.SavedSearch) error
	Delete(ctx context.Context, exhibitID, id string) error
	// UpdateBatch commits the searches mutate returns in one transaction.
	UpdateBatch(
		ctx context.Context, exhibitID string, ids []string,
		mutate func(current []domss.SavedSearch) ([]domss.SavedSearch, error),
	) error
}

// ExhibitReader resolves the owning exhibit.
type ExhibitReader interface {
	GetBySlug(ctx context.Context, slug string) (domex.Exhibit, error)
}
