package chi

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/kailas-cloud/vitrine/internal/domain"
	domex "github.com/kailas-cloud/vitrine/internal/domain/exhibit"
	domss "github.com/kailas-cloud/vitrine/internal/domain/savedsearch"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/vitrine/internal/usecase/health"
)

type errorResponse struct {
	Kind   string            `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// --- Exhibits ---

type exhibitRequest struct {
	Title         string               `json:"title"`
	Subtitle      string               `json:"subtitle"`
	Description   string               `json:"description"`
	Facets        []string             `json:"facets"`
	ContactEmails []domex.ContactEntry `json:"contact_emails"`
	Published     bool                 `json:"published"`
}

func (r exhibitRequest) attributes() domex.Attributes {
	return domex.Attributes{
		Title:         r.Title,
		Subtitle:      r.Subtitle,
		Description:   r.Description,
		Facets:        r.Facets,
		ContactEmails: domex.ContactEmailsFromEntries(r.ContactEmails),
		Published:     r.Published,
	}
}

type exhibitPatchRequest struct {
	Title         *string               `json:"title"`
	Subtitle      *string               `json:"subtitle"`
	Description   *string               `json:"description"`
	Facets        *[]string             `json:"facets"`
	ContactEmails *[]domex.ContactEntry `json:"contact_emails"`
	Published     *bool                 `json:"published"`
}

func (r exhibitPatchRequest) patch() domex.Patch {
	p := domex.Patch{
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		Description: r.Description,
		Facets:      r.Facets,
		Published:   r.Published,
	}
	if r.ContactEmails != nil {
		emails := domex.ContactEmailsFromEntries(*r.ContactEmails)
		p.ContactEmails = &emails
	}
	return p
}

type exhibitResponse struct {
	ID            string               `json:"id"`
	Slug          string               `json:"slug"`
	Title         string               `json:"title"`
	Subtitle      string               `json:"subtitle"`
	Description   string               `json:"description"`
	Facets        []string             `json:"facets"`
	ContactEmails []domex.ContactEntry `json:"contact_emails"`
	Published     bool                 `json:"published"`
	Configuration *domex.Configuration `json:"configuration,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func exhibitToResponse(e domex.Exhibit) exhibitResponse {
	facets := e.Facets()
	if facets == nil {
		facets = []string{}
	}
	return exhibitResponse{
		ID:            e.ID(),
		Slug:          e.Slug(),
		Title:         e.Title(),
		Subtitle:      e.Subtitle(),
		Description:   e.Description(),
		Facets:        facets,
		ContactEmails: e.ContactEmails().Entries(),
		Published:     e.Published(),
		Configuration: e.Config(),
		CreatedAt:     e.CreatedAt(),
		UpdatedAt:     e.UpdatedAt(),
	}
}

type exhibitListResponse struct {
	Items []exhibitResponse `json:"items"`
}

type homePageResponse struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

type homeResponse struct {
	Exhibit             exhibitResponse  `json:"exhibit"`
	Page                homePageResponse `json:"page"`
	LandingSearches     []searchResponse `json:"landing_searches"`
	HasBrowseCategories bool             `json:"has_browse_categories"`
}

// --- Saved searches ---

type searchRequest struct {
	Title            string         `json:"title"`
	ShortDescription string         `json:"short_description"`
	LongDescription  string         `json:"long_description"`
	QueryParams      map[string]any `json:"query_params"`
	Weight           int            `json:"weight"`
	OnLandingPage    bool           `json:"on_landing_page"`
	Published        bool           `json:"published"`
}

func (r searchRequest) attributes() (domss.Attributes, error) {
	params, err := query.Parse(r.QueryParams)
	if err != nil {
		return domss.Attributes{}, err
	}
	return domss.Attributes{
		Title:            r.Title,
		ShortDescription: r.ShortDescription,
		LongDescription:  r.LongDescription,
		Params:           params,
		Weight:           r.Weight,
		OnLandingPage:    r.OnLandingPage,
		Published:        r.Published,
	}, nil
}

type searchPatchRequest struct {
	Title            *string         `json:"title"`
	ShortDescription *string         `json:"short_description"`
	LongDescription  *string         `json:"long_description"`
	QueryParams      *map[string]any `json:"query_params"`
	Weight           *int            `json:"weight"`
	OnLandingPage    *bool           `json:"on_landing_page"`
	Published        *bool           `json:"published"`
}

func (r searchPatchRequest) patch() (domss.Patch, error) {
	p := domss.Patch{
		Title:            r.Title,
		ShortDescription: r.ShortDescription,
		LongDescription:  r.LongDescription,
		Weight:           r.Weight,
		OnLandingPage:    r.OnLandingPage,
		Published:        r.Published,
	}
	if r.QueryParams != nil {
		params, err := query.Parse(*r.QueryParams)
		if err != nil {
			return domss.Patch{}, err
		}
		p.Params = &params
	}
	return p, nil
}

type reconcileRequest struct {
	Searches map[string]searchPatchRequest `json:"searches"`
}

// batch converts every patch, reporting all malformed query_params at once
// under "searches.<id>.query_params".
func (r reconcileRequest) batch() (domss.Batch, error) {
	b := make(domss.Batch, len(r.Searches))
	invalid := &domain.ValidationError{Fields: make(map[string]string)}
	for id, sp := range r.Searches {
		p, err := sp.patch()
		if err != nil {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				return nil, fmt.Errorf("search %s: %w", id, err)
			}
			maps.Copy(invalid.Fields, verr.Prefixed("searches."+id).Fields)
			continue
		}
		b[id] = p
	}
	if len(invalid.Fields) > 0 {
		return nil, invalid
	}
	return b, nil
}

type reconcileResponse struct {
	Count   int      `json:"count"`
	IDs     []string `json:"ids"`
	Message string   `json:"message"`
}

type searchResponse struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	ShortDescription string       `json:"short_description"`
	LongDescription  string       `json:"long_description"`
	QueryParams      query.Params `json:"query_params"`
	Weight           int          `json:"weight"`
	OnLandingPage    bool         `json:"on_landing_page"`
	Published        bool         `json:"published"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func searchToResponse(s domss.SavedSearch) searchResponse {
	return searchResponse{
		ID:               s.ID(),
		Title:            s.Title(),
		ShortDescription: s.ShortDescription(),
		LongDescription:  s.LongDescription(),
		QueryParams:      s.Params(),
		Weight:           s.Weight(),
		OnLandingPage:    s.OnLandingPage(),
		Published:        s.Published(),
		CreatedAt:        s.CreatedAt(),
		UpdatedAt:        s.UpdatedAt(),
	}
}

func searchesToResponse(c domss.Collection) []searchResponse {
	out := make([]searchResponse, len(c))
	for i, s := range c {
		out[i] = searchToResponse(s)
	}
	return out
}

type searchListResponse struct {
	Items []searchResponse `json:"items"`
}

type searchMessageResponse struct {
	Search  *searchResponse `json:"search,omitempty"`
	Message string          `json:"message"`
}

type autocompleteResponse struct {
	Docs  []result.Document `json:"docs"`
	Count int               `json:"count"`
}
