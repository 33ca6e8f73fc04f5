package savedsearch

import (
	"cmp"
	"iter"
	"slices"
	"time"
)

// Collection is the set of saved searches owned by one exhibit.
type Collection []SavedSearch

// Ordered returns a copy sorted by ascending weight; equal weights keep
// creation order, then id order.
func (c Collection) Ordered() Collection {
	out := slices.Clone(c)
	slices.SortStableFunc(out, func(a, b SavedSearch) int {
		if n := cmp.Compare(a.Weight(), b.Weight()); n != 0 {
			return n
		}
		if n := a.CreatedAt().Compare(b.CreatedAt()); n != 0 {
			return n
		}
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}

// Published yields the published searches in collection order.
func (c Collection) Published() iter.Seq[SavedSearch] {
	return func(yield func(SavedSearch) bool) {
		for _, s := range c {
			if s.Published() && !yield(s) {
				return
			}
		}
	}
}

// Landing returns the ordered, published searches flagged for the landing page.
func (c Collection) Landing() Collection {
	var out Collection
	for _, s := range c.Ordered() {
		if s.Published() && s.OnLandingPage() {
			out = append(out, s)
		}
	}
	return out
}

// HasBrowseCategories reports whether at least one search is published.
func (c Collection) HasBrowseCategories() bool {
	for range c.Published() {
		return true
	}
	return false
}

// ByID finds a search by id.
func (c Collection) ByID(id string) (SavedSearch, bool) {
	for _, s := range c {
		if s.ID() == id {
			return s, true
		}
	}
	return SavedSearch{}, false
}

// EnsureDefault returns the collection with the default search added when it is
// empty. A non-empty collection is returned untouched and created is false.
func (c Collection) EnsureDefault(id, exhibitID string, now time.Time) (out Collection, def SavedSearch, created bool) {
	if len(c) > 0 {
		return c, SavedSearch{}, false
	}
	def = NewDefault(id, exhibitID, now)
	return Collection{def}, def, true
}
