package chi

import (
	"net/http"

	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
	savedsearchuc "github.com/kailas-cloud/vitrine/internal/usecase/savedsearch"
)

// ListExhibits handles GET /exhibits.
func (s *Server) ListExhibits(w http.ResponseWriter, r *http.Request) {
	exhibits, err := s.exhibits.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]exhibitResponse, len(exhibits))
	for i, e := range exhibits {
		items[i] = exhibitToResponse(e)
	}
	writeJSON(w, http.StatusOK, exhibitListResponse{Items: items})
}

// CreateExhibit handles POST /exhibits.
func (s *Server) CreateExhibit(w http.ResponseWriter, r *http.Request) {
	var req exhibitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := s.exhibits.Create(r.Context(), req.attributes())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/exhibits/"+e.Slug())
	writeJSON(w, http.StatusCreated, exhibitToResponse(e))
}

// GetExhibit handles GET /exhibits/{exhibit}.
func (s *Server) GetExhibit(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	e, err := s.exhibits.Get(r.Context(), slug)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exhibitToResponse(e))
}

// UpdateExhibit handles PATCH /exhibits/{exhibit}.
func (s *Server) UpdateExhibit(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	var req exhibitPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := s.exhibits.Update(r.Context(), slug, req.patch())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exhibitToResponse(e))
}

// DeleteExhibit handles DELETE /exhibits/{exhibit}.
func (s *Server) DeleteExhibit(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	if err := s.exhibits.Delete(r.Context(), slug); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHome handles GET /exhibits/{exhibit}/home.
func (s *Server) GetHome(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	home, err := s.exhibits.Home(r.Context(), slug)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Exhibit: exhibitToResponse(home.Exhibit),
		Page: homePageResponse{
			Title:     home.Page.Title(),
			Content:   home.Page.Content(),
			Published: home.Page.Published(),
		},
		LandingSearches:     searchesToResponse(home.Landing),
		HasBrowseCategories: home.HasBrowseCategories,
	})
}

// ListSearches handles GET /exhibits/{exhibit}/searches.
func (s *Server) ListSearches(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	var published, landing bool
	if !queryParam(w, r, "published", &published) || !queryParam(w, r, "landing", &landing) {
		return
	}
	searches, err := s.searches.List(r.Context(), slug, savedsearchuc.Filter{
		PublishedOnly: published,
		LandingOnly:   landing,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchListResponse{Items: searchesToResponse(searches)})
}

// CreateSearch handles POST /exhibits/{exhibit}/searches.
func (s *Server) CreateSearch(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	attrs, err := req.attributes()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	created, err := s.searches.Create(r.Context(), slug, attrs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := searchToResponse(created)
	w.Header().Set("Location", "/exhibits/"+slug+"/searches/"+created.ID())
	writeJSON(w, http.StatusCreated, searchMessageResponse{Search: &resp, Message: msgSearchCreated})
}

// ReconcileSearches handles PATCH /exhibits/{exhibit}/searches.
func (s *Server) ReconcileSearches(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	var req reconcileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	batch, err := req.batch()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	ids, err := s.searches.Reconcile(r.Context(), slug, batch)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reconcileResponse{Count: len(ids), IDs: ids, Message: msgSearchesReconciled})
}

// GetSearch handles GET /exhibits/{exhibit}/searches/{id}.
func (s *Server) GetSearch(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	found, err := s.searches.Get(r.Context(), slug, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(found))
}

// UpdateSearch handles PATCH /exhibits/{exhibit}/searches/{id}.
func (s *Server) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req searchPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := req.patch()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	updated, err := s.searches.Update(r.Context(), slug, id, p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(updated))
}

// DeleteSearch handles DELETE /exhibits/{exhibit}/searches/{id}.
func (s *Server) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.searches.Delete(r.Context(), slug, id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchMessageResponse{Message: msgSearchDeleted})
}

// Autocomplete handles GET /exhibits/{exhibit}/searches/{id}/autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathParam(w, r, "exhibit")
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var term string
	if !queryParam(w, r, "term", &term) {
		return
	}
	docs, err := s.autocomplete.Suggest(r.Context(), slug, id, term)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if docs == nil {
		docs = []result.Document{}
	}
	writeJSON(w, http.StatusOK, autocompleteResponse{Docs: docs, Count: len(docs)})
}
