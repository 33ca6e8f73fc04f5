package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kailas-cloud/vitrine/internal/domain"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
)

const searchColumns = `id, exhibit_id, title, short_description, long_description, query_params,
	weight, on_landing_page, published, created_at, updated_at`

// SavedSearchRepo stores saved searches in the saved_searches table.
type SavedSearchRepo struct {
	db *sql.DB
}

// NewSavedSearchRepo creates a saved search repository.
func NewSavedSearchRepo(db *sql.DB) *SavedSearchRepo {
	return &SavedSearchRepo{db: db}
}

// Create inserts a saved search. An unknown exhibit yields domain.ErrNotFound.
func (r *SavedSearchRepo) Create(ctx context.Context, s domss.SavedSearch) error {
	args, err := searchArgs(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO saved_searches (`+searchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, args...)
	if err != nil {
		return translate("create saved search", err)
	}
	return nil
}

// Get returns a saved search of the given exhibit.
func (r *SavedSearchRepo) Get(ctx context.Context, exhibitID, id string) (domss.SavedSearch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+searchColumns+` FROM saved_searches
		WHERE exhibit_id = $1 AND id = $2`, exhibitID, id)
	s, err := scanSearch(row)
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("get saved search: %w", err)
	}
	return s, nil
}

// List returns the exhibit's saved searches in display order.
func (r *SavedSearchRepo) List(ctx context.Context, exhibitID string) (domss.Collection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+searchColumns+` FROM saved_searches
		WHERE exhibit_id = $1
		ORDER BY weight, created_at, id`, exhibitID)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// Update overwrites a saved search.
func (r *SavedSearchRepo) Update(ctx context.Context, s domss.SavedSearch) error {
	args, err := searchArgs(s)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateSearchSQL, args...)
	if err != nil {
		return translate("update saved search", err)
	}
	return expectOne(res, "update saved search")
}

// Delete removes a saved search of the given exhibit.
func (r *SavedSearchRepo) Delete(ctx context.Context, exhibitID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_searches WHERE exhibit_id = $1 AND id = $2`, exhibitID, id)
	if err != nil {
		return translate("delete saved search", err)
	}
	return expectOne(res, "delete saved search")
}

// UpdateBatch locks the named rows of one exhibit, hands them to mutate and
// writes whatever it returns in the same transaction. Ids outside the exhibit
// are absent from the slice mutate receives. Any error rolls back every row.
func (r *SavedSearchRepo) UpdateBatch(
	ctx context.Context, exhibitID string, ids []string,
	mutate func(current []domss.SavedSearch) ([]domss.SavedSearch, error),
) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+searchColumns+` FROM saved_searches
		WHERE exhibit_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE`, exhibitID, pq.Array(ids))
	if err != nil {
		return translate("lock saved searches", err)
	}
	current, err := collect(rows)
	rows.Close()
	if err != nil {
		return err
	}

	updated, err := mutate(current)
	if err != nil {
		return err
	}
	for _, s := range updated {
		if s.ExhibitID() != exhibitID {
			return fmt.Errorf("saved search %s belongs to exhibit %s: %w", s.ID(), s.ExhibitID(), domain.ErrNotFound)
		}
		args, err := searchArgs(s)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, updateSearchSQL, args...); err != nil {
			return translate("update saved search "+s.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return translate("commit", err)
	}
	return nil
}

const updateSearchSQL = `
	UPDATE saved_searches
	SET title = $3, short_description = $4, long_description = $5, query_params = $6,
	    weight = $7, on_landing_page = $8, published = $9, updated_at = $11
	WHERE id = $1 AND exhibit_id = $2`

func searchArgs(s domss.SavedSearch) ([]any, error) {
	params, err := json.Marshal(s.Params())
	if err != nil {
		return nil, fmt.Errorf("marshal query params: %w", err)
	}
	return []any{
		s.ID(), s.ExhibitID(), s.Title(), s.ShortDescription(), s.LongDescription(),
		string(params), s.Weight(), s.OnLandingPage(), s.Published(), s.CreatedAt(), s.UpdatedAt(),
	}, nil
}

func collect(rows *sql.Rows) (domss.Collection, error) {
	out := domss.Collection{}
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved search: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved searches: %w", err)
	}
	return out, nil
}

func scanSearch(sc scanner) (domss.SavedSearch, error) {
	var (
		id, exhibitID        string
		attrs                domss.Attributes
		paramsRaw            []byte
		createdAt, updatedAt time.Time
	)
	err := sc.Scan(&id, &exhibitID, &attrs.Title, &attrs.ShortDescription, &attrs.LongDescription,
		&paramsRaw, &attrs.Weight, &attrs.OnLandingPage, &attrs.Published, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domss.SavedSearch{}, domain.ErrNotFound
	}
	if err != nil {
		return domss.SavedSearch{}, err
	}
	if len(paramsRaw) > 0 {
		var p query.Params
		if err := json.Unmarshal(paramsRaw, &p); err != nil {
			return domss.SavedSearch{}, fmt.Errorf("unmarshal query params: %w", err)
		}
		attrs.Params = p
	}
	return domss.Reconstruct(id, exhibitID, attrs, createdAt.UTC(), updatedAt.UTC()), nil
}
