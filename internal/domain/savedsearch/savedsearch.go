package savedsearch

import (
	"strings"
	"time"

	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/validation"
)

// Default search synthesized for a new exhibit.
const (
	DefaultTitle            = "Browse All Exhibit Items"
	DefaultShortDescription = "Search results for all items in this exhibit"
	DefaultLongDescription  = "All items in this exhibit"
)

// Attributes are the curator-editable fields of a saved search.
type Attributes struct {
	Title            string       `json:"title" validate:"required,max=255"`
	ShortDescription string       `json:"short_description" validate:"max=255"`
	LongDescription  string       `json:"long_description" validate:"max=10000"`
	Params           query.Params `json:"-"`
	Weight           int          `json:"weight" validate:"gte=-100000,lte=100000"`
	OnLandingPage    bool         `json:"on_landing_page"`
	Published        bool         `json:"published"`
}

func (a *Attributes) validate() error {
	a.Title = strings.TrimSpace(a.Title)
	a.ShortDescription = strings.TrimSpace(a.ShortDescription)
	a.LongDescription = strings.TrimSpace(a.LongDescription)
	return validation.Struct(a)
}

// SavedSearch is a named, stored query scoped to one exhibit (immutable value object).
type SavedSearch struct {
	id        string
	exhibitID string
	attrs     Attributes
	createdAt time.Time
	updatedAt time.Time
}

// New validates attributes and creates a SavedSearch.
func New(id, exhibitID string, attrs Attributes, now time.Time) (SavedSearch, error) {
	if err := attrs.validate(); err != nil {
		return SavedSearch{}, err
	}
	return SavedSearch{
		id:        id,
		exhibitID: exhibitID,
		attrs:     attrs,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewDefault creates the "browse all items" search: empty scope, published.
func NewDefault(id, exhibitID string, now time.Time) SavedSearch {
	return SavedSearch{
		id:        id,
		exhibitID: exhibitID,
		attrs: Attributes{
			Title:            DefaultTitle,
			ShortDescription: DefaultShortDescription,
			LongDescription:  DefaultLongDescription,
			Published:        true,
		},
		createdAt: now,
		updatedAt: now,
	}
}

// Reconstruct creates a SavedSearch without validation (storage hydration).
func Reconstruct(id, exhibitID string, attrs Attributes, createdAt, updatedAt time.Time) SavedSearch {
	return SavedSearch{
		id:        id,
		exhibitID: exhibitID,
		attrs:     attrs,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the saved search identifier.
func (s SavedSearch) ID() string { return s.id }

// ExhibitID returns the owning exhibit.
func (s SavedSearch) ExhibitID() string { return s.exhibitID }

// Title returns the display label.
func (s SavedSearch) Title() string { return s.attrs.Title }

// ShortDescription returns the one-line description.
func (s SavedSearch) ShortDescription() string { return s.attrs.ShortDescription }

// LongDescription returns the full description.
func (s SavedSearch) LongDescription() string { return s.attrs.LongDescription }

// Params returns the stored query scope.
func (s SavedSearch) Params() query.Params { return s.attrs.Params }

// Weight returns the ordering weight (ascending).
func (s SavedSearch) Weight() int { return s.attrs.Weight }

// OnLandingPage reports whether the search is shown on the exhibit home view.
func (s SavedSearch) OnLandingPage() bool { return s.attrs.OnLandingPage }

// Published reports whether the search is visible as a browse category.
func (s SavedSearch) Published() bool { return s.attrs.Published }

// CreatedAt returns the creation time; it breaks weight ties.
func (s SavedSearch) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last modification time.
func (s SavedSearch) UpdatedAt() time.Time { return s.updatedAt }

// Attributes returns the editable fields.
func (s SavedSearch) Attributes() Attributes { return s.attrs }

// Equal reports field-for-field equality, timestamps included.
func (s SavedSearch) Equal(o SavedSearch) bool {
	return s.id == o.id &&
		s.exhibitID == o.exhibitID &&
		s.attrs.Title == o.attrs.Title &&
		s.attrs.ShortDescription == o.attrs.ShortDescription &&
		s.attrs.LongDescription == o.attrs.LongDescription &&
		s.attrs.Params.Equal(o.attrs.Params) &&
		s.attrs.Weight == o.attrs.Weight &&
		s.attrs.OnLandingPage == o.attrs.OnLandingPage &&
		s.attrs.Published == o.attrs.Published &&
		s.createdAt.Equal(o.createdAt) &&
		s.updatedAt.Equal(o.updatedAt)
}
