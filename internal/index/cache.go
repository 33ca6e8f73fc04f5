// Package index holds decorators shared by the document index adapters.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/db"
	"github.com/kailas-cloud/vitrine/internal/domain"
	"github.com/kailas-cloud/vitrine/internal/domain/search"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

var cacheKeyPrefix = domain.KeyPrefix + "ac_cache:"

// cacheStore is the consumer interface for the response cache (ISP).
type cacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedIndex caches successful index pages in a key-value store.
// Failures are never cached.
type CachedIndex struct {
	inner      search.Index
	store      cacheStore
	ttl        time.Duration
	backend    string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewCached creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func NewCached(
	inner search.Index, s cacheStore, ttl time.Duration, backend string,
	cacheTotal *prometheus.CounterVec, logger *zap.Logger,
) *CachedIndex {
	return &CachedIndex{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		backend:    backend,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached page or queries the inner index.
func (c *CachedIndex) Search(ctx context.Context, req query.Request) (result.Page, error) {
	key := c.cacheKey(req)

	if page, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return page, nil
	}
	c.incCache("miss")

	page, err := c.inner.Search(ctx, req)
	if err != nil {
		return result.Page{}, err
	}

	c.putToCache(ctx, key, page)
	return page, nil
}

func (c *CachedIndex) incCache(res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(res).Inc()
	}
}

func (c *CachedIndex) cacheKey(req query.Request) string {
	h := sha256.Sum256([]byte(c.backend + "|" + req.Key()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

type cachedHit struct {
	ID     string              `json:"id"`
	Fields map[string][]string `json:"fields"`
}

type cachedPage struct {
	Total int         `json:"total"`
	Hits  []cachedHit `json:"hits"`
}

func (c *CachedIndex) getFromCache(ctx context.Context, key string) (result.Page, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached autocomplete page", zap.String("key", key), zap.Error(err))
		}
		return result.Page{}, false
	}

	var cp cachedPage
	if err := json.Unmarshal(data, &cp); err != nil {
		c.logger.Warn("Failed to parse cached autocomplete page", zap.String("key", key), zap.Error(err))
		return result.Page{}, false
	}

	page := result.Page{Total: cp.Total, Hits: make([]result.Hit, len(cp.Hits))}
	for i, h := range cp.Hits {
		page.Hits[i] = result.NewHit(h.ID, h.Fields)
	}
	return page, true
}

func (c *CachedIndex) putToCache(ctx context.Context, key string, page result.Page) {
	cp := cachedPage{Total: page.Total, Hits: make([]cachedHit, len(page.Hits))}
	for i, h := range page.Hits {
		cp.Hits[i] = cachedHit{ID: h.ID(), Fields: h.Fields()}
	}
	data, err := json.Marshal(cp)
	if err != nil {
		c.logger.Warn("Failed to encode autocomplete page", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache autocomplete page", zap.String("key", key), zap.Error(fmt.Errorf("set: %w", err)))
	}
}
