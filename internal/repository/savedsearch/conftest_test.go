package savedsearch

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/vitrine/internal/db/memstore"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/repository/keys"
)

const testExhibitID = "ex-1"

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestRepo returns a repo over an in-memory store holding one exhibit.
func newTestRepo(t *testing.T) (*Repo, *memstore.Store) {
	t.Helper()
	ms := memstore.New()
	if err := ms.HSet(context.Background(), keys.Exhibit(testExhibitID), map[string]string{"id": testExhibitID}); err != nil {
		t.Fatal(err)
	}
	return New(ms), ms
}

func testSearch(t *testing.T, id string, weight int) domss.SavedSearch {
	t.Helper()
	s, err := domss.New(id, testExhibitID, domss.Attributes{
		Title:     "Search " + id,
		Params:    query.NewParams("maps", map[string][]string{"genre": {"atlas"}}),
		Weight:    weight,
		Published: true,
	}, testNow)
	if err != nil {
		t.Fatalf("new search: %v", err)
	}
	return s
}

func seed(t *testing.T, repo *Repo, searches ...domss.SavedSearch) {
	t.Helper()
	for _, s := range searches {
		if err := repo.Create(context.Background(), s); err != nil {
			t.Fatalf("seed %s: %v", s.ID(), err)
		}
	}
}
