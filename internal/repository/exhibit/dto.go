package exhibit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
)

// exhibitToHash converts a domain Exhibit to a map for HSET.
func exhibitToHash(e domex.Exhibit) (map[string]string, error) {
	facets, err := json.Marshal(nonNil(e.Facets()))
	if err != nil {
		return nil, fmt.Errorf("marshal facets: %w", err)
	}
	emails, err := json.Marshal(nonNil([]string(e.ContactEmails())))
	if err != nil {
		return nil, fmt.Errorf("marshal contact emails: %w", err)
	}
	m := map[string]string{
		"id":             e.ID(),
		"slug":           e.Slug(),
		"title":          e.Title(),
		"subtitle":       e.Subtitle(),
		"description":    e.Description(),
		"facets":         string(facets),
		"contact_emails": string(emails),
		"published":      strconv.FormatBool(e.Published()),
		"created_at":     strconv.FormatInt(e.CreatedAt().UnixNano(), 10),
		"updated_at":     strconv.FormatInt(e.UpdatedAt().UnixNano(), 10),
	}
	if cfg := e.Config(); cfg != nil {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshal configuration: %w", err)
		}
		m["configuration"] = string(raw)
	}
	return m, nil
}

// exhibitFromHash hydrates a domain Exhibit from an HGETALL result map.
func exhibitFromHash(m map[string]string) (domex.Exhibit, error) {
	createdAt, err := parseNanos(m["created_at"])
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := parseNanos(m["updated_at"])
	if err != nil {
		return domex.Exhibit{}, fmt.Errorf("invalid updated_at: %w", err)
	}

	var facets []string
	if raw := m["facets"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &facets); err != nil {
			return domex.Exhibit{}, fmt.Errorf("unmarshal facets: %w", err)
		}
	}
	var emails domex.ContactEmails
	if raw := m["contact_emails"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &emails); err != nil {
			return domex.Exhibit{}, fmt.Errorf("unmarshal contact emails: %w", err)
		}
	}
	var cfg *domex.Configuration
	if raw := m["configuration"]; raw != "" {
		cfg = &domex.Configuration{}
		if err := json.Unmarshal([]byte(raw), cfg); err != nil {
			return domex.Exhibit{}, fmt.Errorf("unmarshal configuration: %w", err)
		}
	}

	return domex.Reconstruct(m["id"], m["slug"], domex.Attributes{
		Title:         m["title"],
		Subtitle:      m["subtitle"],
		Description:   m["description"],
		Facets:        facets,
		ContactEmails: emails,
		Published:     m["published"] == "true",
	}, cfg, createdAt, updatedAt), nil
}

func parseNanos(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
