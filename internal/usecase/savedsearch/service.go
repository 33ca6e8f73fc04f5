package savedsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
)

// Service handles saved search CRUD and bulk reconciliation.
type Service struct {
	repo       Repository
	exhibits   ExhibitReader
	logger     *zap.Logger
	reconciled prometheus.Counter
	now        func() time.Time
	newID      func() string
}

// New creates a saved search service.
func New(repo Repository, exhibits ExhibitReader, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		exhibits: exhibits,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newID,
	}
}

// WithReconciledCounter counts searches updated by Reconcile.
func (s *Service) WithReconciledCounter(c prometheus.Counter) *Service {
	s.reconciled = c
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDGenerator overrides saved search id generation.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.newID = gen
	return s
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Filter narrows List.
type Filter struct {
	PublishedOnly bool
	LandingOnly   bool
}

// List returns the exhibit's searches in display order.
func (s *Service) List(ctx context.Context, slug string, f Filter) (domss.Collection, error) {
	ex, err := s.exhibit(ctx, slug)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx, ex.ID())
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	if f.LandingOnly {
		return all.Landing(), nil
	}
	ordered := all.Ordered()
	if !f.PublishedOnly {
		return ordered, nil
	}
	out := domss.Collection{}
	for sr := range ordered.Published() {
		out = append(out, sr)
	}
	return out, nil
}

// Get retrieves one search of the exhibit.
func (s *Service) Get(ctx context.Context, slug, id string) (domss.SavedSearch, error) {
	ex, err := s.exhibit(ctx, slug)
	if err != nil {
		return domss.SavedSearch{}, err
	}
	sr, err := s.repo.Get(ctx, ex.ID(), id)
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("get search: %w", err)
	}
	return sr, nil
}

// Create validates and stores a new search.
func (s *Service) Create(ctx context.Context, slug string, attrs domss.Attributes) (domss.SavedSearch, error) {
	ex, err := s.exhibit(ctx, slug)
	if err != nil {
		return domss.SavedSearch{}, err
	}
	sr, err := domss.New(s.newID(), ex.ID(), attrs, s.now())
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("validate search: %w", err)
	}
	if err := s.repo.Create(ctx, sr); err != nil {
		return domss.SavedSearch{}, fmt.Errorf("create search: %w", err)
	}
	return sr, nil
}

// Update applies a partial update to one search.
func (s *Service) Update(ctx context.Context, slug, id string, p domss.Patch) (domss.SavedSearch, error) {
	current, err := s.Get(ctx, slug, id)
	if err != nil {
		return domss.SavedSearch{}, err
	}
	updated, err := current.Apply(p, s.now())
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("validate search: %w", err)
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return domss.SavedSearch{}, fmt.Errorf("update search: %w", err)
	}
	return updated, nil
}

// Delete removes one search.
func (s *Service) Delete(ctx context.Context, slug, id string) error {
	ex, err := s.exhibit(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ex.ID(), id); err != nil {
		return fmt.Errorf("delete search: %w", err)
	}
	return nil
}

// Reconcile applies the batch to the searches it names, all or nothing, and
// returns the updated ids in sorted order. Searches the batch does not name
// are left untouched.
func (s *Service) Reconcile(ctx context.Context, slug string, batch domss.Batch) ([]string, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	ex, err := s.exhibit(ctx, slug)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var updated []domss.SavedSearch
	err = s.repo.UpdateBatch(ctx, ex.ID(), batch.IDs(), func(current []domss.SavedSearch) ([]domss.SavedSearch, error) {
		out, err := domss.Reconcile(batch, current, now)
		updated = out
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile searches: %w", err)
	}

	ids := make([]string, len(updated))
	for i, sr := range updated {
		ids[i] = sr.ID()
	}
	if s.reconciled != nil {
		s.reconciled.Add(float64(len(ids)))
	}
	s.logger.Debug("Searches reconciled",
		zap.String("exhibit", slug),
		zap.Strings("ids", ids),
	)
	return ids, nil
}

func (s *Service) exhibit(ctx context.Context, slug string) (domex.Exhibit, error) {
	ex, err := s.exhibits.GetBySlug(ctx, slug)
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("get exhibit: %w", err)
	}
	return ex, nil
}
