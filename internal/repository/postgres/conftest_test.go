package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var exhibitRowColumns = []string{
	"id", "slug", "title", "subtitle", "description", "facets", "contact_emails",
	"published", "configuration", "created_at", "updated_at",
}

var searchRowColumns = []string{
	"id", "exhibit_id", "title", "short_description", "long_description", "query_params",
	"weight", "on_landing_page", "published", "created_at", "updated_at",
}

func searchRow(rows *sqlmock.Rows, id string, weight int, landing bool, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "ex-1", "Search "+id, "", "", []byte(`{"f":{"genre":["map"]}}`),
		weight, landing, true, created, created)
}
