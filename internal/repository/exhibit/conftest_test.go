package exhibit

import (
	"testing"
	"time"

	"github.com/kailas-cloud/vitrine/internal/db/memstore"
	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repo, *memstore.Store) {
	t.Helper()
	ms := memstore.New()
	return New(ms), ms
}

func testExhibit(t *testing.T, id, title string) domex.Exhibit {
	t.Helper()
	e, err := domex.New(id, "", domex.Attributes{
		Title:         title,
		Facets:        []string{"genre"},
		ContactEmails: domex.ContactEmails{"curator@example.com"},
		Published:     true,
	}, testNow)
	if err != nil {
		t.Fatalf("new exhibit: %v", err)
	}
	return e
}
