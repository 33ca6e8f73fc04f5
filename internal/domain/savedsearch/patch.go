package savedsearch

import (
	"time"

	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
)

// Patch is a partial saved search update. Nil fields are unchanged.
type Patch struct {
	Title            *string
	ShortDescription *string
	LongDescription  *string
	Params           *query.Params
	Weight           *int
	OnLandingPage    *bool
	Published        *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.ShortDescription == nil && p.LongDescription == nil &&
		p.Params == nil && p.Weight == nil && p.OnLandingPage == nil && p.Published == nil
}

// Apply returns s with the supplied fields replaced and validated.
// Fields the patch does not carry keep their current value.
func (s SavedSearch) Apply(p Patch, now time.Time) (SavedSearch, error) {
	attrs := s.attrs
	if p.Title != nil {
		attrs.Title = *p.Title
	}
	if p.ShortDescription != nil {
		attrs.ShortDescription = *p.ShortDescription
	}
	if p.LongDescription != nil {
		attrs.LongDescription = *p.LongDescription
	}
	if p.Params != nil {
		attrs.Params = *p.Params
	}
	if p.Weight != nil {
		attrs.Weight = *p.Weight
	}
	if p.OnLandingPage != nil {
		attrs.OnLandingPage = *p.OnLandingPage
	}
	if p.Published != nil {
		attrs.Published = *p.Published
	}
	if err := attrs.validate(); err != nil {
		return SavedSearch{}, err
	}
	s.attrs = attrs
	s.updatedAt = now
	return s, nil
}
