package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/vitrine/internal/domain"
	domhp "github.com/kailas-cloud/vitrine/internal/domain/homepage"
)

// HomePageRepo stores home pages, one row per exhibit.
type HomePageRepo struct {
	db *sql.DB
}

// NewHomePageRepo creates a home page repository.
func NewHomePageRepo(db *sql.DB) *HomePageRepo {
	return &HomePageRepo{db: db}
}

// Create inserts the home page of an exhibit.
func (r *HomePageRepo) Create(ctx context.Context, h domhp.HomePage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO home_pages (exhibit_id, title, content, published, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		h.ExhibitID(), h.Title(), h.Content(), h.Published(), h.CreatedAt())
	if err != nil {
		return translate("create home page", err)
	}
	return nil
}

// Get returns the home page of an exhibit.
func (r *HomePageRepo) Get(ctx context.Context, exhibitID string) (domhp.HomePage, error) {
	var (
		title, content string
		published      bool
		createdAt      time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT title, content, published, created_at FROM home_pages WHERE exhibit_id = $1`,
		exhibitID).Scan(&title, &content, &published, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domhp.HomePage{}, domain.ErrNotFound
	}
	if err != nil {
		return domhp.HomePage{}, fmt.Errorf("get home page: %w", err)
	}
	return domhp.Reconstruct(exhibitID, title, content, published, createdAt.UTC()), nil
}
