package autocomplete

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/domain"
	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

// --- Mocks ---

type mockExhibits struct{}

func (mockExhibits) GetBySlug(_ context.Context, slug string) (domex.Exhibit, error) {
	if slug != "maps" {
		return domex.Exhibit{}, domain.ErrNotFound
	}
	return domex.Reconstruct("ex-1", "maps", domex.Attributes{Title: "Maps"}, nil, time.Time{}, time.Time{}), nil
}

type mockSearches struct {
	searches map[string]domss.SavedSearch
}

func (m *mockSearches) Get(_ context.Context, exhibitID, id string) (domss.SavedSearch, error) {
	s, ok := m.searches[id]
	if !ok || s.ExhibitID() != exhibitID {
		return domss.SavedSearch{}, domain.ErrNotFound
	}
	return s, nil
}

type mockIndex struct {
	searchFn func(ctx context.Context, req query.Request) (result.Page, error)
	calls    []query.Request
}

func (m *mockIndex) Search(ctx context.Context, req query.Request) (result.Page, error) {
	m.calls = append(m.calls, req)
	return m.searchFn(ctx, req)
}

// --- Helpers ---

var fields = result.FieldMap{
	Title:       "title",
	Description: "description",
	Thumbnail:   "thumbnail_url",
}

func newService(idx *mockIndex) *Service {
	scoped := domss.Reconstruct("s-1", "ex-1", domss.Attributes{
		Title:  "Portolan charts",
		Params: query.NewParams("portolan", map[string][]string{"genre": {"map"}}),
	}, time.Time{}, time.Time{})
	foreign := domss.Reconstruct("s-2", "ex-2", domss.Attributes{Title: "Other"}, time.Time{}, time.Time{})
	searches := &mockSearches{searches: map[string]domss.SavedSearch{"s-1": scoped, "s-2": foreign}}
	projector := result.NewProjector(fields, "/exhibits/{exhibit}/catalog/{id}")
	return New(mockExhibits{}, searches, idx, projector, zap.NewNop())
}

func pageOf(ids ...string) result.Page {
	p := result.Page{Total: len(ids)}
	for _, id := range ids {
		p.Hits = append(p.Hits, result.NewHit(id, map[string][]string{"title": {"Title " + id}}))
	}
	return p
}

// --- Tests ---

func TestSuggest_MergesTermIntoStoredScope(t *testing.T) {
	idx := &mockIndex{searchFn: func(context.Context, query.Request) (result.Page, error) {
		return pageOf("a"), nil
	}}
	svc := newService(idx).WithPageSize(7)

	if _, err := svc.Suggest(context.Background(), "maps", "s-1", " venice "); err != nil {
		t.Fatal(err)
	}

	req := idx.calls[0]
	if !slices.Equal(req.TextClauses(), []string{"portolan", "venice"}) {
		t.Errorf("text clauses = %v", req.TextClauses())
	}
	if got := req.Params().Facets()["genre"]; !slices.Equal(got, []string{"map"}) {
		t.Errorf("facets = %v", req.Params().Facets())
	}
	if req.Limit() != 7 {
		t.Errorf("limit = %d, want 7", req.Limit())
	}
}

func TestSuggest_NoTermUsesSamePageSize(t *testing.T) {
	idx := &mockIndex{searchFn: func(context.Context, query.Request) (result.Page, error) {
		return result.Page{}, nil
	}}
	svc := newService(idx)

	docs, err := svc.Suggest(context.Background(), "maps", "s-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", docs)
	}
	req := idx.calls[0]
	if req.HasTerm() || req.Limit() != DefaultPageSize {
		t.Errorf("term=%q limit=%d", req.Term(), req.Limit())
	}
}

func TestSuggest_ProjectsInIndexOrder(t *testing.T) {
	idx := &mockIndex{searchFn: func(context.Context, query.Request) (result.Page, error) {
		return pageOf("z", "a", "m"), nil
	}}
	svc := newService(idx)

	docs, err := svc.Suggest(context.Background(), "maps", "s-1", "x")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, d := range docs {
		got = append(got, d.ID)
	}
	if !slices.Equal(got, []string{"z", "a", "m"}) {
		t.Errorf("order = %v", got)
	}

	want := result.Document{ID: "z", Title: "Title z", URL: "/exhibits/maps/catalog/z"}
	if docs[0] != want {
		t.Errorf("doc = %+v, want %+v", docs[0], want)
	}
}

func TestSuggest_IndexFailureIsUpstreamUnavailable(t *testing.T) {
	idx := &mockIndex{searchFn: func(context.Context, query.Request) (result.Page, error) {
		return result.Page{}, errors.New("connection refused")
	}}
	svc := newService(idx)

	docs, err := svc.Suggest(context.Background(), "maps", "s-1", "x")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if docs != nil {
		t.Errorf("expected no documents, got %v", docs)
	}
}

func TestSuggest_Timeout(t *testing.T) {
	idx := &mockIndex{searchFn: func(ctx context.Context, _ query.Request) (result.Page, error) {
		<-ctx.Done()
		return result.Page{}, ctx.Err()
	}}
	svc := newService(idx).WithTimeout(10 * time.Millisecond)

	_, err := svc.Suggest(context.Background(), "maps", "s-1", "x")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline in chain, got %v", err)
	}
}

func TestSuggest_NotFound(t *testing.T) {
	idx := &mockIndex{}
	svc := newService(idx)

	tests := []struct {
		name, exhibit, search string
	}{
		{"unknown exhibit", "nope", "s-1"},
		{"unknown search", "maps", "missing"},
		{"search of another exhibit", "maps", "s-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Suggest(context.Background(), tt.exhibit, tt.search, "x")
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
	if len(idx.calls) != 0 {
		t.Error("index must not be queried")
	}
}

func TestSuggest_TermTooLong(t *testing.T) {
	idx := &mockIndex{}
	svc := newService(idx)

	_, err := svc.Suggest(context.Background(), "maps", "s-1", strings.Repeat("a", query.MaxTermLength+1))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
