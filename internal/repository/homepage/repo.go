package homepage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/vitrine/internal/db"
	"github.com/kailas-cloud/vitrine/internal/domain"
	domhp "github.com/kailas-cloud/vitrine/internal/domain/homepage"
	"github.com/kailas-cloud/vitrine/internal/repository/keys"
)

// store is the consumer interface for home pages (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Atomic(ctx context.Context, watch []string, fn func(ctx context.Context, r db.HashReader, tx db.Tx) error) error
}

// Repo implements usecase/exhibit.HomePageRepository on Redis/Valkey.
type Repo struct {
	store store
}

// New creates a home page repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores the home page of an existing exhibit. A second page for the
// same exhibit fails with domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, h domhp.HomePage) error {
	exKey := keys.Exhibit(h.ExhibitID())
	key := keys.HomePage(h.ExhibitID())
	err := r.store.Atomic(ctx, []string{exKey, key}, func(ctx context.Context, rd db.HashReader, tx db.Tx) error {
		found, err := rd.HGetAllMulti(ctx, []string{exKey, key})
		if err != nil {
			return fmt.Errorf("hgetall home page %s: %w", h.ExhibitID(), err)
		}
		if len(found[0]) == 0 {
			return fmt.Errorf("exhibit %s: %w", h.ExhibitID(), domain.ErrNotFound)
		}
		if len(found[1]) > 0 {
			return domain.ErrAlreadyExists
		}
		tx.HSet(key, map[string]string{
			"exhibit_id": h.ExhibitID(),
			"title":      h.Title(),
			"content":    h.Content(),
			"published":  strconv.FormatBool(h.Published()),
			"created_at": strconv.FormatInt(h.CreatedAt().UnixNano(), 10),
		})
		return nil
	})
	if err != nil {
		if db.IsTxConflict(err) {
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		return err
	}
	return nil
}

// Get returns the home page of an exhibit.
func (r *Repo) Get(ctx context.Context, exhibitID string) (domhp.HomePage, error) {
	m, err := r.store.HGetAll(ctx, keys.HomePage(exhibitID))
	if err != nil {
		return domhp.HomePage{}, fmt.Errorf("hgetall home page %s: %w", exhibitID, err)
	}
	if len(m) == 0 {
		return domhp.HomePage{}, domain.ErrNotFound
	}
	n, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domhp.HomePage{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return domhp.Reconstruct(m["exhibit_id"], m["title"], m["content"], m["published"] == "true",
		time.Unix(0, n).UTC()), nil
}
