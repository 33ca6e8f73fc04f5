// Package redisearch serves autocomplete queries from an FT index living in
// the same Redis/Valkey deployment as the entity store.
package redisearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/db"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

// store is the consumer interface for the index (ISP).
type store interface {
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Config describes the catalog index layout.
type Config struct {
	IndexName   string
	Prefix      string
	FacetFields []string
	// IDField, when set, is read for the document id instead of the key suffix.
	IDField string
	Fields  result.FieldMap
}

// Index implements search.Index and search.Checker over FT.SEARCH.
type Index struct {
	store  store
	cfg    Config
	logger *zap.Logger
}

// New creates a RediSearch-backed index.
func New(s store, cfg Config, logger *zap.Logger) *Index {
	return &Index{store: s, cfg: cfg, logger: logger}
}

// Search runs the stored scope plus the live term. Each stored filter value,
// whether under "f" or a top-level key, becomes its own tag filter so values
// of one field are intersected, never unioned.
func (i *Index) Search(ctx context.Context, req query.Request) (result.Page, error) {
	q := i.buildQuery(req)
	sr, err := i.store.Search(ctx, q)
	if err != nil {
		return result.Page{}, fmt.Errorf("ft.search %s: %w", i.cfg.IndexName, err)
	}

	page := result.Page{Total: sr.Total, Hits: make([]result.Hit, 0, len(sr.Entries))}
	for _, e := range sr.Entries {
		page.Hits = append(page.Hits, i.toHit(e))
	}
	return page, nil
}

func (i *Index) buildQuery(req query.Request) *db.Query {
	q := &db.Query{
		IndexName:    i.cfg.IndexName,
		TextFields:   i.textFields(),
		Text:         req.TextClauses(),
		Limit:        req.Limit(),
		ReturnFields: i.returnFields(),
	}
	params := req.Params()
	filters := params.Filters()
	for _, field := range params.FilterFields() {
		for _, v := range filters[field] {
			q.Filters = append(q.Filters, db.TagFilter{Field: field, Value: v})
		}
	}
	return q
}

func (i *Index) textFields() []string {
	var out []string
	for _, f := range []string{i.cfg.Fields.Title, i.cfg.Fields.Description} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (i *Index) returnFields() []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range []string{i.cfg.IDField, i.cfg.Fields.Title, i.cfg.Fields.Description, i.cfg.Fields.Thumbnail, i.cfg.Fields.URL} {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (i *Index) toHit(e db.SearchEntry) result.Hit {
	id := strings.TrimPrefix(e.Key, i.cfg.Prefix)
	if i.cfg.IDField != "" && e.Fields[i.cfg.IDField] != "" {
		id = e.Fields[i.cfg.IDField]
	}
	fields := make(map[string][]string, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = []string{v}
	}
	return result.NewHit(id, fields)
}

// EnsureIndex creates the FT index when it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	exists, err := i.store.IndexExists(ctx, i.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.cfg.IndexName, err)
	}
	if exists {
		return nil
	}

	b := db.NewIndex(i.cfg.IndexName).Prefix(i.cfg.Prefix)
	if i.cfg.Fields.Title != "" {
		b.TextWeighted(i.cfg.Fields.Title, 2)
	}
	if i.cfg.Fields.Description != "" {
		b.Text(i.cfg.Fields.Description)
	}
	for _, f := range i.cfg.FacetFields {
		b.Tag(f)
	}
	def, err := b.Build()
	if err != nil {
		return fmt.Errorf("build index %s: %w", i.cfg.IndexName, err)
	}

	if err := i.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", i.cfg.IndexName, err)
	}
	i.logger.Info("Created catalog index", zap.String("index", i.cfg.IndexName))
	return nil
}

// Check reports whether the FT index exists.
func (i *Index) Check(ctx context.Context) error {
	exists, err := i.store.IndexExists(ctx, i.cfg.IndexName)
	if err != nil {
		return err
	}
	if !exists {
		return db.ErrIndexNotFound
	}
	return nil
}
