package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/vitrine/internal/domain"
	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
)

const exhibitColumns = `id, slug, title, subtitle, description, facets, contact_emails,
	published, configuration, created_at, updated_at`

// ExhibitRepo stores exhibits in the exhibits table. The slug column carries
// the unique constraint that makes default-exhibit creation race free.
type ExhibitRepo struct {
	db *sql.DB
}

// NewExhibitRepo creates an exhibit repository.
func NewExhibitRepo(db *sql.DB) *ExhibitRepo {
	return &ExhibitRepo{db: db}
}

// Create inserts a new exhibit. A taken slug yields domain.ErrAlreadyExists.
func (r *ExhibitRepo) Create(ctx context.Context, e domex.Exhibit) error {
	args, err := exhibitArgs(e)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO exhibits (`+exhibitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, args...)
	if err != nil {
		return translate("create exhibit", err)
	}
	return nil
}

// FindOrCreate inserts e unless its slug is taken, then returns the owner of
// the slug. created reports whether e was the row inserted.
func (r *ExhibitRepo) FindOrCreate(ctx context.Context, e domex.Exhibit) (domex.Exhibit, bool, error) {
	args, err := exhibitArgs(e)
	if err != nil {
		return domex.Exhibit{}, false, err
	}
	var id string
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO exhibits (`+exhibitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id`, args...).Scan(&id)
	switch {
	case err == nil:
		return e, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := r.GetBySlug(ctx, e.Slug())
		if err != nil {
			return domex.Exhibit{}, false, err
		}
		return existing, false, nil
	default:
		return domex.Exhibit{}, false, translate("find or create exhibit", err)
	}
}

// Get returns the exhibit with the given id.
func (r *ExhibitRepo) Get(ctx context.Context, id string) (domex.Exhibit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+exhibitColumns+` FROM exhibits WHERE id = $1`, id)
	e, err := scanExhibit(row)
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("get exhibit: %w", err)
	}
	return e, nil
}

// GetBySlug returns the exhibit owning slug.
func (r *ExhibitRepo) GetBySlug(ctx context.Context, slug string) (domex.Exhibit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+exhibitColumns+` FROM exhibits WHERE slug = $1`, slug)
	e, err := scanExhibit(row)
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("get exhibit by slug: %w", err)
	}
	return e, nil
}

// List returns all exhibits in creation order.
func (r *ExhibitRepo) List(ctx context.Context) ([]domex.Exhibit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+exhibitColumns+` FROM exhibits ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list exhibits: %w", err)
	}
	defer rows.Close()

	exhibits := []domex.Exhibit{}
	for rows.Next() {
		e, err := scanExhibit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exhibit: %w", err)
		}
		exhibits = append(exhibits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exhibits: %w", err)
	}
	return exhibits, nil
}

// Update overwrites the mutable columns of an exhibit. The slug is never
// rewritten.
func (r *ExhibitRepo) Update(ctx context.Context, e domex.Exhibit) error {
	args, err := exhibitArgs(e)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE exhibits
		SET title = $3, subtitle = $4, description = $5, facets = $6, contact_emails = $7,
		    published = $8, configuration = $9, updated_at = $11
		WHERE id = $1 AND slug = $2`, args...)
	if err != nil {
		return translate("update exhibit", err)
	}
	return expectOne(res, "update exhibit")
}

// Delete removes an exhibit. Saved searches and the home page go with it
// through ON DELETE CASCADE.
func (r *ExhibitRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exhibits WHERE id = $1`, id)
	if err != nil {
		return translate("delete exhibit", err)
	}
	return expectOne(res, "delete exhibit")
}

func exhibitArgs(e domex.Exhibit) ([]any, error) {
	facets, err := json.Marshal(nonNil(e.Facets()))
	if err != nil {
		return nil, fmt.Errorf("marshal facets: %w", err)
	}
	emails, err := json.Marshal(nonNil([]string(e.ContactEmails())))
	if err != nil {
		return nil, fmt.Errorf("marshal contact emails: %w", err)
	}
	// JSONB parameters go as text; lib/pq would send []byte as bytea.
	var cfg any
	if e.Config() != nil {
		raw, err := json.Marshal(e.Config())
		if err != nil {
			return nil, fmt.Errorf("marshal configuration: %w", err)
		}
		cfg = string(raw)
	}
	return []any{
		e.ID(), e.Slug(), e.Title(), e.Subtitle(), e.Description(),
		string(facets), string(emails), e.Published(), cfg, e.CreatedAt(), e.UpdatedAt(),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExhibit(s scanner) (domex.Exhibit, error) {
	var (
		e                                      domex.Exhibit
		id, slug, title, subtitle, description string
		facetsRaw, emailsRaw, cfgRaw           []byte
		published                              bool
		createdAt, updatedAt                   time.Time
	)
	err := s.Scan(&id, &slug, &title, &subtitle, &description, &facetsRaw, &emailsRaw,
		&published, &cfgRaw, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return e, domain.ErrNotFound
	}
	if err != nil {
		return e, err
	}

	attrs := domex.Attributes{Title: title, Subtitle: subtitle, Description: description, Published: published}
	if len(facetsRaw) > 0 {
		if err := json.Unmarshal(facetsRaw, &attrs.Facets); err != nil {
			return e, fmt.Errorf("unmarshal facets: %w", err)
		}
	}
	if len(emailsRaw) > 0 {
		if err := json.Unmarshal(emailsRaw, &attrs.ContactEmails); err != nil {
			return e, fmt.Errorf("unmarshal contact emails: %w", err)
		}
	}
	var cfg *domex.Configuration
	if len(cfgRaw) > 0 {
		cfg = &domex.Configuration{}
		if err := json.Unmarshal(cfgRaw, cfg); err != nil {
			return e, fmt.Errorf("unmarshal configuration: %w", err)
		}
	}
	return domex.Reconstruct(id, slug, attrs, cfg, createdAt.UTC(), updatedAt.UTC()), nil
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
