package autocomplete

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/domain"
	"github.com/kailas-cloud/vitrine/internal/domain/search"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

// DefaultPageSize is used when none is configured.
const DefaultPageSize = 10

// Service answers type-ahead requests inside a saved search's scope.
type Service struct {
	exhibits  ExhibitReader
	searches  SearchReader
	index     search.Index
	projector result.Projector
	logger    *zap.Logger
	pageSize  int
	timeout   time.Duration
}

// New creates an autocomplete service.
func New(exhibits ExhibitReader, searches SearchReader, index search.Index, projector result.Projector, logger *zap.Logger) *Service {
	return &Service{
		exhibits:  exhibits,
		searches:  searches,
		index:     index,
		projector: projector,
		logger:    logger,
		pageSize:  DefaultPageSize,
	}
}

// WithPageSize sets the fixed number of documents requested from the index.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// WithTimeout bounds each index call. Zero leaves the caller's deadline alone.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Suggest queries the index with the saved search's stored parameters narrowed
// by term and returns the projected documents in index order. An index failure
// is reported as domain.ErrUpstreamUnavailable, never as an empty result.
func (s *Service) Suggest(ctx context.Context, slug, searchID, term string) ([]result.Document, error) {
	ex, err := s.exhibits.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get exhibit: %w", err)
	}
	sr, err := s.searches.Get(ctx, ex.ID(), searchID)
	if err != nil {
		return nil, fmt.Errorf("get search: %w", err)
	}

	req, err := query.NewRequest(sr.Params(), term, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	page, err := s.index.Search(ctx, req)
	if err != nil {
		s.logger.Warn("Index search failed",
			zap.String("exhibit", slug),
			zap.String("search", searchID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}

	return s.projector.ProjectAll(ex.Slug(), page.Hits), nil
}
