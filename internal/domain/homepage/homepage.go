package homepage

import "time"

// DefaultTitle is the title of the home page every exhibit starts with.
const DefaultTitle = "Exhibit Home"

// HomePage is the landing view of an exhibit. Each exhibit has at most one.
type HomePage struct {
	exhibitID string
	title     string
	content   string
	published bool
	createdAt time.Time
}

// NewDefault creates the published default home page for an exhibit.
func NewDefault(exhibitID string, now time.Time) HomePage {
	return HomePage{
		exhibitID: exhibitID,
		title:     DefaultTitle,
		published: true,
		createdAt: now,
	}
}

// Reconstruct creates a HomePage without validation (storage hydration).
func Reconstruct(exhibitID, title, content string, published bool, createdAt time.Time) HomePage {
	return HomePage{
		exhibitID: exhibitID,
		title:     title,
		content:   content,
		published: published,
		createdAt: createdAt,
	}
}

// ExhibitID returns the owning exhibit.
func (h HomePage) ExhibitID() string { return h.exhibitID }

// Title returns the page title.
func (h HomePage) Title() string { return h.title }

// Content returns the page body.
func (h HomePage) Content() string { return h.content }

// Published reports whether the page is visible.
func (h HomePage) Published() bool { return h.published }

// CreatedAt returns the creation time.
func (h HomePage) CreatedAt() time.Time { return h.createdAt }
