package solr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		URL:  srv.URL,
		Core: "blacklight-core",
		Fields: result.FieldMap{
			Title:       "full_title_tesim",
			Description: "description_tesim",
			Thumbnail:   "thumbnail_url_ssm",
		},
	}, zap.NewNop())
}

func newRequest(t *testing.T, text string, facets map[string][]string, term string) query.Request {
	t.Helper()
	req, err := query.NewRequest(query.NewParams(text, facets), term, 10)
	require.NoError(t, err)
	return req
}

func TestSearch_SendsScopedQuery(t *testing.T) {
	var got url.Values
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	})

	req := newRequest(t, "maps", map[string][]string{"genre_ssim": {"map"}}, "Noorder deel")
	_, err := c.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "/solr/blacklight-core/select", path)
	assert.Equal(t, "(maps) AND (Noorder deel)", got.Get("q"))
	assert.Equal(t, "edismax", got.Get("defType"))
	assert.Equal(t, "AND", got.Get("q.op"))
	assert.Equal(t, "full_title_tesim^2 description_tesim", got.Get("qf"))
	assert.Equal(t, []string{"{!term f=genre_ssim}map"}, got["fq"])
	assert.Equal(t, "10", got.Get("rows"))
	assert.Equal(t, "id,full_title_tesim,description_tesim,thumbnail_url_ssm", got.Get("fl"))
}

func TestSearch_MatchAllWithoutText(t *testing.T) {
	var got url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	})

	_, err := c.Search(context.Background(), newRequest(t, "", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, "*:*", got.Get("q"))
	assert.Empty(t, got.Get("defType"))
}

func TestSearch_ParsesDocsInOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"numFound":42,"docs":[
			{"id":"b","full_title_tesim":["Bee","Alt"],"thumbnail_url_ssm":["http://x/b.jpg"]},
			{"id":"a","full_title_tesim":"Ant","page_count_isi":12}
		]}}`))
	})

	page, err := c.Search(context.Background(), newRequest(t, "", nil, "x"))
	require.NoError(t, err)
	assert.Equal(t, 42, page.Total)
	require.Len(t, page.Hits, 2)
	assert.Equal(t, "b", page.Hits[0].ID())
	assert.Equal(t, "Bee", page.Hits[0].First("full_title_tesim"))
	assert.Equal(t, "http://x/b.jpg", page.Hits[0].First("thumbnail_url_ssm"))
	assert.Equal(t, "a", page.Hits[1].ID())
	assert.Equal(t, "12", page.Hits[1].First("page_count_isi"))
}

func TestSearch_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"msg":"undefined field genre","code":400}}`))
	})

	_, err := c.Search(context.Background(), newRequest(t, "", nil, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined field genre")
}

func TestSearch_Unreachable(t *testing.T) {
	c := New(Config{URL: "http://127.0.0.1:1", Core: "core"}, zap.NewNop())
	_, err := c.Search(context.Background(), newRequest(t, "", nil, ""))
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/solr/blacklight-core/admin/ping" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	})
	assert.NoError(t, c.Check(context.Background()))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `title\:\(x\)`, Escape("title:(x)"))
	assert.Equal(t, "Noorder deel", Escape("Noorder deel"))
}

func TestSearch_TopLevelParamsBecomeFilterQueries(t *testing.T) {
	var got url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	})

	var params query.Params
	require.NoError(t, json.Unmarshal([]byte(`{"genre":["map"],"f":{"language_ssim":["Dutch"]}}`), &params))
	req, err := query.NewRequest(params, "", 10)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "*:*", got.Get("q"))
	assert.Equal(t, []string{"{!term f=genre}map", "{!term f=language_ssim}Dutch"}, got["fq"])
}
