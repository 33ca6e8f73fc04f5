// Package solr serves autocomplete queries from an Apache Solr core over its
// /select handler.
package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

// Config holds the Solr endpoint and document layout.
type Config struct {
	URL     string
	Core    string
	Timeout time.Duration
	Retries int
	IDField string
	Fields  result.FieldMap
}

// Client implements search.Index and search.Checker against Solr.
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Solr client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.IDField == "" {
		cfg.IDField = "id"
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	return &Client{http: c, cfg: cfg, logger: logger}
}

type selectResponse struct {
	Response struct {
		NumFound int              `json:"numFound"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
	Error *struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error"`
}

// Search queries the core's /select handler. Text clauses are ANDed through
// edismax; every stored filter value becomes a separate term filter query.
func (c *Client) Search(ctx context.Context, req query.Request) (result.Page, error) {
	var body selectResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(c.selectParams(req)).
		SetResult(&body).
		SetError(&body).
		Get(c.path("select"))
	if err != nil {
		return result.Page{}, fmt.Errorf("solr select: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if body.Error != nil && body.Error.Msg != "" {
			msg = body.Error.Msg
		}
		return result.Page{}, fmt.Errorf("solr select: status %d: %s", resp.StatusCode(), msg)
	}

	page := result.Page{Total: body.Response.NumFound, Hits: make([]result.Hit, 0, len(body.Response.Docs))}
	for _, doc := range body.Response.Docs {
		fields := flatten(doc)
		id := ""
		if vs := fields[c.cfg.IDField]; len(vs) > 0 {
			id = vs[0]
		}
		page.Hits = append(page.Hits, result.NewHit(id, fields))
	}
	c.logger.Debug("Solr select",
		zap.String("core", c.cfg.Core),
		zap.Int("found", page.Total),
		zap.Int("returned", len(page.Hits)),
	)
	return page, nil
}

func (c *Client) selectParams(req query.Request) url.Values {
	v := url.Values{}
	v.Set("wt", "json")
	v.Set("rows", strconv.Itoa(req.Limit()))
	v.Set("fl", strings.Join(c.returnFields(), ","))

	clauses := req.TextClauses()
	if len(clauses) == 0 {
		v.Set("q", "*:*")
	} else {
		parts := make([]string, len(clauses))
		for i, cl := range clauses {
			parts[i] = "(" + Escape(cl) + ")"
		}
		v.Set("defType", "edismax")
		v.Set("q.op", "AND")
		v.Set("q", strings.Join(parts, " AND "))
		if qf := c.queryFields(); qf != "" {
			v.Set("qf", qf)
		}
	}

	params := req.Params()
	filters := params.Filters()
	for _, field := range params.FilterFields() {
		for _, val := range filters[field] {
			v.Add("fq", fmt.Sprintf("{!term f=%s}%s", field, val))
		}
	}
	return v
}

func (c *Client) queryFields() string {
	var qf []string
	if c.cfg.Fields.Title != "" {
		qf = append(qf, c.cfg.Fields.Title+"^2")
	}
	if c.cfg.Fields.Description != "" {
		qf = append(qf, c.cfg.Fields.Description)
	}
	return strings.Join(qf, " ")
}

func (c *Client) returnFields() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range []string{c.cfg.IDField, c.cfg.Fields.Title, c.cfg.Fields.Description, c.cfg.Fields.Thumbnail, c.cfg.Fields.URL} {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Check pings the core.
func (c *Client) Check(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("wt", "json").
		Get(c.path("admin/ping"))
	if err != nil {
		return fmt.Errorf("solr ping: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("solr ping: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) path(handler string) string {
	return "/solr/" + url.PathEscape(c.cfg.Core) + "/" + handler
}

// flatten turns Solr's mixed scalar and multi-valued fields into string lists.
func flatten(doc map[string]any) map[string][]string {
	out := make(map[string][]string, len(doc))
	for k, raw := range doc {
		switch v := raw.(type) {
		case []any:
			for _, item := range v {
				if s, ok := scalar(item); ok {
					out[k] = append(out[k], s)
				}
			}
		default:
			if s, ok := scalar(v); ok {
				out[k] = []string{s}
			}
		}
	}
	return out
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// Escape backslash-escapes Solr query syntax characters.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\+-!():^[]"{}~*?|&;/`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
