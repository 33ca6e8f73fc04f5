package redisearch

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/db"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

type mockStore struct {
	searchFn      func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

var testConfig = Config{
	IndexName:   "vitrine:catalog:idx",
	Prefix:      "vitrine:catalog:",
	FacetFields: []string{"genre"},
	Fields: result.FieldMap{
		Title:       "title",
		Description: "description",
		Thumbnail:   "thumbnail_url",
	},
}

func newRequest(t *testing.T, text string, facets map[string][]string, term string) query.Request {
	t.Helper()
	req, err := query.NewRequest(query.NewParams(text, facets), term, 10)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestSearch_BuildsScopedQuery(t *testing.T) {
	var got *db.Query
	ms := &mockStore{searchFn: func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{}, nil
	}}
	idx := New(ms, testConfig, zap.NewNop())

	req := newRequest(t, "maps", map[string][]string{"genre": {"map", "atlas"}}, "Noorder deel")
	if _, err := idx.Search(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	if got.IndexName != testConfig.IndexName {
		t.Errorf("index = %q", got.IndexName)
	}
	if !reflect.DeepEqual(got.Text, []string{"maps", "Noorder deel"}) {
		t.Errorf("text = %v", got.Text)
	}
	if !reflect.DeepEqual(got.TextFields, []string{"title", "description"}) {
		t.Errorf("text fields = %v", got.TextFields)
	}
	wantFilters := []db.TagFilter{{Field: "genre", Value: "map"}, {Field: "genre", Value: "atlas"}}
	if !reflect.DeepEqual(got.Filters, wantFilters) {
		t.Errorf("filters = %v", got.Filters)
	}
	if got.Limit != 10 {
		t.Errorf("limit = %d", got.Limit)
	}
	if !reflect.DeepEqual(got.ReturnFields, []string{"title", "description", "thumbnail_url"}) {
		t.Errorf("return fields = %v", got.ReturnFields)
	}
}

func TestSearch_MapsEntriesInOrder(t *testing.T) {
	ms := &mockStore{searchFn: func(_ context.Context, _ *db.Query) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 7, Entries: []db.SearchEntry{
			{Key: "vitrine:catalog:b", Fields: map[string]string{"title": "Bee"}},
			{Key: "vitrine:catalog:a", Fields: map[string]string{"title": "Ant"}},
		}}, nil
	}}
	idx := New(ms, testConfig, zap.NewNop())

	page, err := idx.Search(context.Background(), newRequest(t, "", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 7 || len(page.Hits) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Hits[0].ID() != "b" || page.Hits[1].ID() != "a" {
		t.Errorf("order = %s, %s", page.Hits[0].ID(), page.Hits[1].ID())
	}
	if page.Hits[0].First("title") != "Bee" {
		t.Errorf("title = %q", page.Hits[0].First("title"))
	}
}

func TestSearch_IDField(t *testing.T) {
	cfg := testConfig
	cfg.IDField = "item_id"
	ms := &mockStore{searchFn: func(_ context.Context, _ *db.Query) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "vitrine:catalog:1", Fields: map[string]string{"item_id": "bd742gh9656"}},
		}}, nil
	}}
	page, err := New(ms, cfg, zap.NewNop()).Search(context.Background(), newRequest(t, "", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if page.Hits[0].ID() != "bd742gh9656" {
		t.Errorf("id = %q", page.Hits[0].ID())
	}
}

func TestSearch_Error(t *testing.T) {
	ms := &mockStore{searchFn: func(_ context.Context, _ *db.Query) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}}
	_, err := New(ms, testConfig, zap.NewNop()).Search(context.Background(), newRequest(t, "", nil, ""))
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestEnsureIndex_Creates(t *testing.T) {
	var created *db.IndexDefinition
	ms := &mockStore{
		indexExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			created = def
			return nil
		},
	}
	if err := New(ms, testConfig, zap.NewNop()).EnsureIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "FT.CREATE vitrine:catalog:idx ON HASH PREFIX vitrine:catalog: SCHEMA " +
		"title TEXT WEIGHT 2 SORTABLE description TEXT genre TAG"
	if created == nil || created.String() != want {
		t.Errorf("definition = %v", created)
	}
}

func TestEnsureIndex_Exists(t *testing.T) {
	ms := &mockStore{createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error {
		t.Error("must not create an existing index")
		return nil
	}}
	if err := New(ms, testConfig, zap.NewNop()).EnsureIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestCheck_Missing(t *testing.T) {
	ms := &mockStore{indexExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil }}
	err := New(ms, testConfig, zap.NewNop()).Check(context.Background())
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_TopLevelParamsNarrowScope(t *testing.T) {
	var got *db.Query
	ms := &mockStore{searchFn: func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{}, nil
	}}

	var params query.Params
	if err := json.Unmarshal([]byte(`{"genre":["map"]}`), &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	req, err := query.NewRequest(params, "", 10)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := New(ms, testConfig, zap.NewNop()).Search(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	want := []db.TagFilter{{Field: "genre", Value: "map"}}
	if !reflect.DeepEqual(got.Filters, want) {
		t.Errorf("filters = %v, want %v", got.Filters, want)
	}
}
