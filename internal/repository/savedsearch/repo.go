package savedsearch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/vitrine/internal/db"
	"github.com/kailas-cloud/vitrine/internal/domain"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
	"github.com/kailas-cloud/vitrine/internal/repository/keys"
)

// store is the consumer interface for saved searches (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	Atomic(ctx context.Context, watch []string, fn func(ctx context.Context, r db.HashReader, tx db.Tx) error) error
}

// Repo implements usecase/savedsearch.Repository on Redis/Valkey.
// Every write runs in a WATCH transaction on the owning exhibit so a search
// is never stored under a deleted exhibit.
type Repo struct {
	store store
}

// New creates a saved search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new saved search under its exhibit.
func (r *Repo) Create(ctx context.Context, s domss.SavedSearch) error {
	hash, err := searchToHash(s)
	if err != nil {
		return err
	}
	exKey := keys.Exhibit(s.ExhibitID())
	key := keys.Search(s.ExhibitID(), s.ID())

	err = r.store.Atomic(ctx, []string{exKey, key}, func(ctx context.Context, rd db.HashReader, tx db.Tx) error {
		found, err := rd.HGetAllMulti(ctx, []string{exKey, key})
		if err != nil {
			return fmt.Errorf("hgetall search %s: %w", s.ID(), err)
		}
		if len(found[0]) == 0 {
			return fmt.Errorf("exhibit %s: %w", s.ExhibitID(), domain.ErrNotFound)
		}
		if len(found[1]) > 0 {
			return domain.ErrAlreadyExists
		}
		tx.HSet(key, hash)
		tx.SAdd(keys.Searches(s.ExhibitID()), s.ID())
		return nil
	})
	return translateTx(err)
}

// Get retrieves a saved search of the given exhibit.
func (r *Repo) Get(ctx context.Context, exhibitID, id string) (domss.SavedSearch, error) {
	m, err := r.store.HGetAll(ctx, keys.Search(exhibitID, id))
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("hgetall search %s: %w", id, err)
	}
	if len(m) == 0 {
		return domss.SavedSearch{}, domain.ErrNotFound
	}
	return searchFromHash(m)
}

// List returns every saved search of the exhibit in storage order. Callers
// order the result with Collection.Ordered.
func (r *Repo) List(ctx context.Context, exhibitID string) (domss.Collection, error) {
	ids, err := r.store.SMembers(ctx, keys.Searches(exhibitID))
	if err != nil {
		return nil, fmt.Errorf("smembers searches: %w", err)
	}
	if len(ids) == 0 {
		return domss.Collection{}, nil
	}
	found, err := r.load(ctx, r.store, exhibitID, ids)
	if err != nil {
		return nil, err
	}
	out := make(domss.Collection, 0, len(found))
	for _, id := range ids {
		if s, ok := found[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Update overwrites an existing saved search.
func (r *Repo) Update(ctx context.Context, s domss.SavedSearch) error {
	hash, err := searchToHash(s)
	if err != nil {
		return err
	}
	key := keys.Search(s.ExhibitID(), s.ID())
	err = r.store.Atomic(ctx, []string{key}, func(ctx context.Context, rd db.HashReader, tx db.Tx) error {
		m, err := rd.HGetAll(ctx, key)
		if err != nil {
			return fmt.Errorf("hgetall search %s: %w", s.ID(), err)
		}
		if len(m) == 0 {
			return domain.ErrNotFound
		}
		tx.HSet(key, hash)
		return nil
	})
	return translateTx(err)
}

// Delete removes a saved search and its set membership.
func (r *Repo) Delete(ctx context.Context, exhibitID, id string) error {
	key := keys.Search(exhibitID, id)
	err := r.store.Atomic(ctx, []string{key}, func(ctx context.Context, rd db.HashReader, tx db.Tx) error {
		m, err := rd.HGetAll(ctx, key)
		if err != nil {
			return fmt.Errorf("hgetall search %s: %w", id, err)
		}
		if len(m) == 0 {
			return domain.ErrNotFound
		}
		tx.Del(key)
		tx.SRem(keys.Searches(exhibitID), id)
		return nil
	})
	return translateTx(err)
}

// UpdateBatch loads the named searches of one exhibit, hands them to mutate
// and commits whatever it returns in a single transaction. Ids that do not
// exist in the exhibit are simply absent from the slice mutate receives.
// Nothing is written when mutate fails or a watched search changed
// concurrently (domain.ErrConflict).
func (r *Repo) UpdateBatch(
	ctx context.Context, exhibitID string, ids []string,
	mutate func(current []domss.SavedSearch) ([]domss.SavedSearch, error),
) error {
	watch := make([]string, 0, len(ids)+1)
	watch = append(watch, keys.Exhibit(exhibitID))
	for _, id := range ids {
		watch = append(watch, keys.Search(exhibitID, id))
	}

	err := r.store.Atomic(ctx, watch, func(ctx context.Context, rd db.HashReader, tx db.Tx) error {
		found, err := r.load(ctx, rd, exhibitID, ids)
		if err != nil {
			return err
		}
		current := make([]domss.SavedSearch, 0, len(found))
		for _, id := range ids {
			if s, ok := found[id]; ok {
				current = append(current, s)
			}
		}

		updated, err := mutate(current)
		if err != nil {
			return err
		}
		for _, s := range updated {
			if s.ExhibitID() != exhibitID {
				return fmt.Errorf("saved search %s belongs to exhibit %s: %w", s.ID(), s.ExhibitID(), domain.ErrNotFound)
			}
			hash, err := searchToHash(s)
			if err != nil {
				return err
			}
			tx.HSet(keys.Search(exhibitID, s.ID()), hash)
		}
		return nil
	})
	return translateTx(err)
}

func (r *Repo) load(ctx context.Context, rd db.HashReader, exhibitID string, ids []string) (map[string]domss.SavedSearch, error) {
	hashKeys := make([]string, len(ids))
	for i, id := range ids {
		hashKeys[i] = keys.Search(exhibitID, id)
	}
	results, err := rd.HGetAllMulti(ctx, hashKeys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi searches: %w", err)
	}
	out := make(map[string]domss.SavedSearch, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		s, err := searchFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse search %s: %w", ids[i], err)
		}
		out[ids[i]] = s
	}
	return out, nil
}

func translateTx(err error) error {
	if db.IsTxConflict(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return err
}
