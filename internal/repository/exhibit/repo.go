package exhibit

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/vitrine/internal/db"
	"github.com/kailas-cloud/vitrine/internal/domain"
	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	"github.com/kailas-cloud/vitrine/internal/repository/keys"
)

// store is the consumer interface for exhibits (ISP).
//
//nolint:interfacebloat // exhibit repo needs hash, set, kv and transaction operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) error
	Atomic(ctx context.Context, watch []string, fn func(ctx context.Context, r db.HashReader, tx db.Tx) error) error
}

// Repo implements usecase/exhibit.Repository on Redis/Valkey.
type Repo struct {
	store store
}

// New creates an exhibit repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new exhibit. The slug key is claimed with SET NX after the
// hash is written; losing the claim removes the hash and returns
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, e domex.Exhibit) error {
	return r.insert(ctx, e)
}

// FindOrCreate returns the exhibit owning e's slug, storing e first if the
// slug is free. created reports whether e was stored.
func (r *Repo) FindOrCreate(ctx context.Context, e domex.Exhibit) (domex.Exhibit, bool, error) {
	err := r.insert(ctx, e)
	switch {
	case err == nil:
		return e, true, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		existing, err := r.GetBySlug(ctx, e.Slug())
		if err != nil {
			return domex.Exhibit{}, false, err
		}
		return existing, false, nil
	default:
		return domex.Exhibit{}, false, err
	}
}

func (r *Repo) insert(ctx context.Context, e domex.Exhibit) error {
	hash, err := exhibitToHash(e)
	if err != nil {
		return err
	}

	// Step 1: HSET under the fresh id, not yet reachable by slug
	if err := r.store.HSet(ctx, keys.Exhibit(e.ID()), hash); err != nil {
		return fmt.Errorf("hset exhibit %s: %w", e.ID(), err)
	}

	// Step 2: claim the slug; rollback the hash if someone owns it
	if err := r.store.SetNX(ctx, keys.Slug(e.Slug()), []byte(e.ID())); err != nil {
		cleanupErr := r.store.Del(ctx, keys.Exhibit(e.ID()))
		if errors.Is(err, db.ErrKeyExists) {
			if cleanupErr != nil {
				return errors.Join(domain.ErrAlreadyExists, cleanupErr)
			}
			return domain.ErrAlreadyExists
		}
		return errors.Join(fmt.Errorf("claim slug %s: %w", e.Slug(), err), cleanupErr)
	}

	if err := r.store.SAdd(ctx, keys.Exhibits(), e.ID()); err != nil {
		return fmt.Errorf("sadd exhibit %s: %w", e.ID(), err)
	}
	return nil
}

// Get retrieves an exhibit by id.
func (r *Repo) Get(ctx context.Context, id string) (domex.Exhibit, error) {
	m, err := r.store.HGetAll(ctx, keys.Exhibit(id))
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("hgetall exhibit %s: %w", id, err)
	}
	if len(m) == 0 {
		return domex.Exhibit{}, domain.ErrNotFound
	}
	return exhibitFromHash(m)
}

// GetBySlug resolves the slug index and loads the exhibit.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (domex.Exhibit, error) {
	id, err := r.store.Get(ctx, keys.Slug(slug))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domex.Exhibit{}, domain.ErrNotFound
		}
		return domex.Exhibit{}, fmt.Errorf("get slug %s: %w", slug, err)
	}
	return r.Get(ctx, string(id))
}

// List returns all exhibits sorted by creation time.
func (r *Repo) List(ctx context.Context) ([]domex.Exhibit, error) {
	ids, err := r.store.SMembers(ctx, keys.Exhibits())
	if err != nil {
		return nil, fmt.Errorf("smembers exhibits: %w", err)
	}
	if len(ids) == 0 {
		return []domex.Exhibit{}, nil
	}

	hashKeys := make([]string, len(ids))
	for i, id := range ids {
		hashKeys[i] = keys.Exhibit(id)
	}
	results, err := r.store.HGetAllMulti(ctx, hashKeys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi exhibits: %w", err)
	}

	exhibits := make([]domex.Exhibit, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		e, err := exhibitFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse exhibit %s: %w", ids[i], err)
		}
		exhibits = append(exhibits, e)
	}

	sort.Slice(exhibits, func(i, j int) bool {
		if exhibits[i].CreatedAt().Equal(exhibits[j].CreatedAt()) {
			return exhibits[i].ID() < exhibits[j].ID()
		}
		return exhibits[i].CreatedAt().Before(exhibits[j].CreatedAt())
	})
	return exhibits, nil
}

// Update overwrites an existing exhibit.
func (r *Repo) Update(ctx context.Context, e domex.Exhibit) error {
	hash, err := exhibitToHash(e)
	if err != nil {
		return err
	}
	key := keys.Exhibit(e.ID())
	err = r.store.Atomic(ctx, []string{key}, func(ctx context.Context, rd db.HashReader, tx db.Tx) error {
		current, err := rd.HGetAll(ctx, key)
		if err != nil {
			return fmt.Errorf("hgetall exhibit %s: %w", e.ID(), err)
		}
		if len(current) == 0 {
			return domain.ErrNotFound
		}
		tx.HSet(key, hash)
		return nil
	})
	return translateTx(err)
}

// Delete removes the exhibit, its saved searches and its home page in one
// transaction, then releases the slug claim and the exhibits set entry.
// Those two live outside the exhibit's hash slot and are dropped afterwards.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := keys.Exhibit(id)
	searches := keys.Searches(id)
	var slug string
	err := r.store.Atomic(ctx, []string{key, searches}, func(ctx context.Context, rd db.HashReader, tx db.Tx) error {
		m, err := rd.HGetAll(ctx, key)
		if err != nil {
			return fmt.Errorf("hgetall exhibit %s: %w", id, err)
		}
		if len(m) == 0 {
			return domain.ErrNotFound
		}
		searchIDs, err := r.store.SMembers(ctx, searches)
		if err != nil {
			return fmt.Errorf("smembers searches %s: %w", id, err)
		}

		slug = m["slug"]
		doomed := []string{key, searches, keys.HomePage(id)}
		for _, sid := range searchIDs {
			doomed = append(doomed, keys.Search(id, sid))
		}
		tx.Del(doomed...)
		return nil
	})
	if err != nil {
		return translateTx(err)
	}

	// A claim left behind points at a missing hash, which reads as not found.
	if err := r.store.Del(ctx, keys.Slug(slug)); err != nil {
		return fmt.Errorf("release slug %s: %w", slug, err)
	}
	if err := r.store.SRem(ctx, keys.Exhibits(), id); err != nil {
		return fmt.Errorf("srem exhibit %s: %w", id, err)
	}
	return nil
}

func translateTx(err error) error {
	if db.IsTxConflict(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return err
}
