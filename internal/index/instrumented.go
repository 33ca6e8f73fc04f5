package index

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/domain/search"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
	"github.com/kailas-cloud/vitrine/internal/metrics"
)

// InstrumentedIndex wraps an index with latency, outcome metrics and logging.
type InstrumentedIndex struct {
	inner   search.Index
	backend string
	logger  *zap.Logger
}

// NewInstrumented wraps an index with observability.
func NewInstrumented(inner search.Index, backend string, logger *zap.Logger) *InstrumentedIndex {
	return &InstrumentedIndex{inner: inner, backend: backend, logger: logger}
}

// Search delegates to the inner index and records the outcome.
func (i *InstrumentedIndex) Search(ctx context.Context, req query.Request) (result.Page, error) {
	start := time.Now()

	page, err := i.inner.Search(ctx, req)

	duration := time.Since(start)
	metrics.IndexRequestDuration.WithLabelValues(i.backend).Observe(duration.Seconds())

	if err != nil {
		status := "error"
		if ctx.Err() != nil {
			status = "timeout"
		}
		metrics.IndexRequestsTotal.WithLabelValues(i.backend, status).Inc()
		i.logger.Error("Index query failed",
			zap.String("backend", i.backend),
			zap.Duration("duration", duration),
			zap.Bool("has_term", req.HasTerm()),
			zap.Error(err),
		)
		return result.Page{}, fmt.Errorf("%s: %w", i.backend, err)
	}

	metrics.IndexRequestsTotal.WithLabelValues(i.backend, "ok").Inc()
	metrics.IndexHitsReturned.WithLabelValues(i.backend).Observe(float64(len(page.Hits)))

	i.logger.Debug("Index query completed",
		zap.String("backend", i.backend),
		zap.Duration("duration", duration),
		zap.Int("hits", len(page.Hits)),
		zap.Int("total", page.Total),
	)
	return page, nil
}
