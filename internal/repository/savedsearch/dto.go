package savedsearch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
)

// searchToHash converts a domain SavedSearch to a map for HSET.
func searchToHash(s domss.SavedSearch) (map[string]string, error) {
	params, err := json.Marshal(s.Params())
	if err != nil {
		return nil, fmt.Errorf("marshal query params: %w", err)
	}
	return map[string]string{
		"id":                s.ID(),
		"exhibit_id":        s.ExhibitID(),
		"title":             s.Title(),
		"short_description": s.ShortDescription(),
		"long_description":  s.LongDescription(),
		"query_params":      string(params),
		"weight":            strconv.Itoa(s.Weight()),
		"on_landing_page":   strconv.FormatBool(s.OnLandingPage()),
		"published":         strconv.FormatBool(s.Published()),
		"created_at":        strconv.FormatInt(s.CreatedAt().UnixNano(), 10),
		"updated_at":        strconv.FormatInt(s.UpdatedAt().UnixNano(), 10),
	}, nil
}

// searchFromHash hydrates a domain SavedSearch from an HGETALL result map.
func searchFromHash(m map[string]string) (domss.SavedSearch, error) {
	weight, err := strconv.Atoi(m["weight"])
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("invalid weight: %w", err)
	}
	createdAt, err := parseNanos(m["created_at"])
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := parseNanos(m["updated_at"])
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	var params query.Params
	if raw := m["query_params"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return domss.SavedSearch{}, fmt.Errorf("unmarshal query params: %w", err)
		}
	}

	return domss.Reconstruct(m["id"], m["exhibit_id"], domss.Attributes{
		Title:            m["title"],
		ShortDescription: m["short_description"],
		LongDescription:  m["long_description"],
		Params:           params,
		Weight:           weight,
		OnLandingPage:    m["on_landing_page"] == "true",
		Published:        m["published"] == "true",
	}, createdAt, updatedAt), nil
}

func parseNanos(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}
