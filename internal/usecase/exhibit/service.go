package exhibit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/domain"
	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	domhp "github.com/kailas-cloud/vitrine/internal/domain/homepage"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
)

// Service handles exhibit lifecycle, including default initialization.
type Service struct {
	repo     Repository
	searches SearchRepository
	pages    HomePageRepository
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New creates an exhibit service.
func New(repo Repository, searches SearchRepository, pages HomePageRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		searches: searches,
		pages:    pages,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newID,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDGenerator overrides exhibit id generation.
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

// defaultSearchID is derived from the exhibit so concurrent initializers
// agree on it and the store rejects the second insert.
func defaultSearchID(exhibitID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("vitrine:default-search:"+exhibitID)).String()
}

// Create validates attrs, stores the exhibit and runs default initialization.
func (s *Service) Create(ctx context.Context, attrs domex.Attributes) (domex.Exhibit, error) {
	e, err := domex.New(s.newID(), "", attrs, s.now())
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("validate exhibit: %w", err)
	}
	out, _, err := s.initialize(ctx, e, func(ctx context.Context, e domex.Exhibit) (domex.Exhibit, bool, error) {
		if err := s.repo.Create(ctx, e); err != nil {
			return domex.Exhibit{}, false, err
		}
		return e, true, nil
	})
	return out, err
}

// EnsureDefault returns the default exhibit, creating and initializing it on
// first use. Concurrent callers converge on one exhibit through the store's
// unique slug.
func (s *Service) EnsureDefault(ctx context.Context, slug, title string) (domex.Exhibit, bool, error) {
	if slug == "" {
		slug = domex.DefaultSlug
	}
	if title == "" {
		title = domex.DefaultTitle
	}
	e, err := domex.New(s.newID(), slug, domex.Attributes{Title: title, Published: true}, s.now())
	if err != nil {
		return domex.Exhibit{}, false, fmt.Errorf("validate default exhibit: %w", err)
	}

	return s.initialize(ctx, e, s.repo.FindOrCreate)
}

type persistFunc func(ctx context.Context, e domex.Exhibit) (stored domex.Exhibit, created bool, err error)

// initialize walks the default-initialization states once, for the exhibit
// persist actually created. An exhibit that already existed is returned as
// stored: its searches and home page belong to the curator from then on.
func (s *Service) initialize(ctx context.Context, e domex.Exhibit, persist persistFunc) (domex.Exhibit, bool, error) {
	created := false
	state := domex.StateNew
	for {
		switch state {
		case domex.StateNew:
			e = e.WithConfig(domex.DefaultConfiguration())
			stored, ok, err := persist(ctx, e)
			if err != nil {
				return domex.Exhibit{}, false, fmt.Errorf("create exhibit: %w", err)
			}
			if !ok {
				s.logger.Debug("Exhibit already initialized", zap.String("exhibit", stored.Slug()))
				return stored, false, nil
			}
			e, created = stored, true

		case domex.StateConfigInitialized:
			if err := s.ensureDefaultSearch(ctx, e); err != nil {
				return domex.Exhibit{}, false, s.rollback(ctx, e, err)
			}

		case domex.StateSearchesInitialized:
			s.createHomePage(ctx, e)

		case domex.StateHomePageInitialized, domex.StateReady:
		}

		next, ok := state.Next()
		if !ok {
			s.logger.Debug("Exhibit initialized",
				zap.String("exhibit", e.Slug()),
				zap.Bool("created", created),
			)
			return e, created, nil
		}
		s.logger.Debug("Exhibit state transition",
			zap.String("exhibit", e.Slug()),
			zap.Stringer("from", state),
			zap.Stringer("to", next),
		)
		state = next
	}
}

func (s *Service) ensureDefaultSearch(ctx context.Context, e domex.Exhibit) error {
	current, err := s.searches.List(ctx, e.ID())
	if err != nil {
		return fmt.Errorf("list searches: %w", err)
	}
	_, def, created := current.EnsureDefault(defaultSearchID(e.ID()), e.ID(), s.now())
	if !created {
		return nil
	}
	if err := s.searches.Create(ctx, def); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create default search: %w", err)
	}
	return nil
}

func (s *Service) createHomePage(ctx context.Context, e domex.Exhibit) {
	if err := s.pages.Create(ctx, domhp.NewDefault(e.ID(), s.now())); err != nil {
		s.logger.Warn("Failed to create default home page",
			zap.String("exhibit", e.Slug()),
			zap.Error(err),
		)
	}
}

func (s *Service) rollback(ctx context.Context, e domex.Exhibit, cause error) error {
	if delErr := s.repo.Delete(ctx, e.ID()); delErr != nil {
		return errors.Join(cause, fmt.Errorf("rollback exhibit %s: %w", e.Slug(), delErr))
	}
	return cause
}

// Get retrieves an exhibit by slug.
func (s *Service) Get(ctx context.Context, slug string) (domex.Exhibit, error) {
	e, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("get exhibit: %w", err)
	}
	return e, nil
}

// List returns all exhibits.
func (s *Service) List(ctx context.Context) ([]domex.Exhibit, error) {
	exhibits, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exhibits: %w", err)
	}
	return exhibits, nil
}

// Update applies a partial update. The slug never changes.
func (s *Service) Update(ctx context.Context, slug string, p domex.Patch) (domex.Exhibit, error) {
	e, err := s.Get(ctx, slug)
	if err != nil {
		return domex.Exhibit{}, err
	}
	updated, err := e.Apply(p, s.now())
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("validate exhibit: %w", err)
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return domex.Exhibit{}, fmt.Errorf("update exhibit: %w", err)
	}
	return updated, nil
}

// Delete removes an exhibit with its searches and home page.
func (s *Service) Delete(ctx context.Context, slug string) error {
	e, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, e.ID()); err != nil {
		return fmt.Errorf("delete exhibit: %w", err)
	}
	return nil
}

// Home is the landing view of an exhibit.
type Home struct {
	Exhibit             domex.Exhibit
	Page                domhp.HomePage
	Landing             domss.Collection
	HasBrowseCategories bool
}

// Home returns the home page with the searches shown on it.
func (s *Service) Home(ctx context.Context, slug string) (Home, error) {
	e, err := s.Get(ctx, slug)
	if err != nil {
		return Home{}, err
	}
	page, err := s.pages.Get(ctx, e.ID())
	if err != nil {
		return Home{}, fmt.Errorf("get home page: %w", err)
	}
	searches, err := s.searches.List(ctx, e.ID())
	if err != nil {
		return Home{}, fmt.Errorf("list searches: %w", err)
	}
	return Home{
		Exhibit:             e,
		Page:                page,
		Landing:             searches.Landing(),
		HasBrowseCategories: searches.HasBrowseCategories(),
	}, nil
}
