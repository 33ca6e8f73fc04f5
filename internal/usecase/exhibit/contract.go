package exhibit

import (
	"context"

	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	domhp "github.com/kailas-cloud/vitrine/internal/domain/homepage"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
)

// Repository defines the storage contract for exhibits.
type Repository interface {
	Create(ctx context.Context, e domex.Exhibit) error
	FindOrCreate(ctx context.Context, e domex.Exhibit) (domex.Exhibit, bool, error)
	Get(ctx context.Context, id string) (domex.Exhibit, error)
	GetBySlug(ctx context.Context, slug string) (domex.Exhibit, error)
	List(ctx context.Context) ([]domex.Exhibit, error)
	Update(ctx context.Context, e domex.Exhibit) error
	Delete(ctx context.Context, id string) error
}

// SearchRepository is the part of saved search storage default
// initialization needs.
type SearchRepository interface {
	Create(ctx context.Context, s domss.SavedSearch) error
	List(ctx context.Context, exhibitID string) (domss.Collection, error)
}

// HomePageRepository defines the storage contract for home pages.
type HomePageRepository interface {
	Create(ctx context.Context, h domhp.HomePage) error
	Get(ctx context.Context, exhibitID string) (domhp.HomePage, error)
}
