package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vitrine/internal/domain"
)

// Request limits.
const (
	MaxTermLength = 512
	MaxLimit      = 100
)

// Request is an index query: the stored scope of a saved search narrowed by an
// optional live term.
type Request struct {
	params Params
	term   string
	limit  int
}

// NewRequest validates a query. The term is trimmed; an empty term means the
// stored scope alone is queried.
func NewRequest(params Params, term string, limit int) (Request, error) {
	term = strings.TrimSpace(term)
	if len(term) > MaxTermLength {
		return Request{}, domain.NewValidationError("term",
			fmt.Sprintf("is too long (maximum is %d characters)", MaxTermLength))
	}
	if limit <= 0 || limit > MaxLimit {
		return Request{}, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}
	return Request{params: params, term: term, limit: limit}, nil
}

// Params returns the stored scope.
func (r Request) Params() Params { return r.params }

// Term returns the live term, or "".
func (r Request) Term() string { return r.term }

// HasTerm reports whether a live term narrows the scope.
func (r Request) HasTerm() bool { return r.term != "" }

// Limit returns the page size.
func (r Request) Limit() int { return r.limit }

// TextClauses returns the free-text clauses to be ANDed: the stored "q" first,
// then the live term. The term never replaces the stored text.
func (r Request) TextClauses() []string {
	var out []string
	if t := r.params.Text(); t != "" {
		out = append(out, t)
	}
	if r.term != "" {
		out = append(out, r.term)
	}
	return out
}

// Key is a stable identity of the request, suitable for caching.
func (r Request) Key() string {
	return r.params.Canonical() + "|" + strconv.Itoa(r.limit) + "|" + r.term
}
