package exhibit

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/vitrine/internal/domain"
	"github.com/kailas-cloud/vitrine/internal/domain/validation"
)

// Default exhibit identity, used by the startup find-or-create.
const (
	DefaultSlug  = "default"
	DefaultTitle = "Default exhibit"
)

// Attributes are the curator-editable fields of an exhibit.
type Attributes struct {
	Title         string        `json:"title" validate:"required,max=255"`
	Subtitle      string        `json:"subtitle" validate:"max=255"`
	Description   string        `json:"description" validate:"max=10000"`
	Facets        []string      `json:"facets" validate:"max=64,dive,required"`
	ContactEmails ContactEmails `json:"-"`
	Published     bool          `json:"published"`
}

func (a *Attributes) normalize() error {
	a.Title = strings.TrimSpace(a.Title)
	a.Subtitle = strings.TrimSpace(a.Subtitle)
	desc, err := StripHTML(a.Description)
	if err != nil {
		return err
	}
	a.Description = desc
	return nil
}

func (a *Attributes) validate() error {
	if err := a.normalize(); err != nil {
		return err
	}
	structErr := validation.Struct(a)
	emailErr := a.ContactEmails.Validate()
	if structErr == nil && emailErr == nil {
		return nil
	}
	return mergeValidation(structErr, emailErr)
}

// Exhibit is the tenant aggregate (immutable value object).
type Exhibit struct {
	id            string
	slug          string
	title         string
	subtitle      string
	description   string
	facets        []string
	contactEmails ContactEmails
	published     bool
	config        *Configuration
	createdAt     time.Time
	updatedAt     time.Time
}

// New validates attributes and creates an exhibit. The slug is derived from the
// title unless slug is non-empty. The description is stored with markup stripped.
func New(id, slug string, attrs Attributes, now time.Time) (Exhibit, error) {
	if err := attrs.validate(); err != nil {
		return Exhibit{}, err
	}
	if slug == "" {
		slug = Slugify(attrs.Title)
	}
	if slug == "" {
		return Exhibit{}, domain.NewValidationError("title", "must contain at least one letter or digit")
	}
	if len(slug) > MaxSlugLength || slug != Slugify(slug) {
		return Exhibit{}, domain.NewValidationError("slug", "is invalid")
	}
	return Exhibit{
		id:            id,
		slug:          slug,
		title:         attrs.Title,
		subtitle:      attrs.Subtitle,
		description:   attrs.Description,
		facets:        slices.Clone(attrs.Facets),
		contactEmails: slices.Clone(attrs.ContactEmails),
		published:     attrs.Published,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct creates an Exhibit without validation (storage hydration).
func Reconstruct(
	id, slug string, attrs Attributes, config *Configuration,
	createdAt, updatedAt time.Time,
) Exhibit {
	return Exhibit{
		id:            id,
		slug:          slug,
		title:         attrs.Title,
		subtitle:      attrs.Subtitle,
		description:   attrs.Description,
		facets:        attrs.Facets,
		contactEmails: attrs.ContactEmails,
		published:     attrs.Published,
		config:        config,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the exhibit identifier.
func (e Exhibit) ID() string { return e.id }

// Slug returns the stable URL identity.
func (e Exhibit) Slug() string { return e.slug }

// Title returns the display title.
func (e Exhibit) Title() string { return e.title }

// Subtitle returns the display subtitle.
func (e Exhibit) Subtitle() string { return e.subtitle }

// Description returns the plain-text description.
func (e Exhibit) Description() string { return e.description }

// Facets returns the selected facet fields.
func (e Exhibit) Facets() []string { return e.facets }

// ContactEmails returns the contact address list.
func (e Exhibit) ContactEmails() ContactEmails { return e.contactEmails }

// Published reports whether the exhibit is public.
func (e Exhibit) Published() bool { return e.published }

// Config returns the configuration sub-object, nil before initialization.
func (e Exhibit) Config() *Configuration { return e.config }

// CreatedAt returns the creation time.
func (e Exhibit) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns the last modification time.
func (e Exhibit) UpdatedAt() time.Time { return e.updatedAt }

// Attributes returns the editable fields.
func (e Exhibit) Attributes() Attributes {
	return Attributes{
		Title:         e.title,
		Subtitle:      e.subtitle,
		Description:   e.description,
		Facets:        e.facets,
		ContactEmails: e.contactEmails,
		Published:     e.published,
	}
}

// WithConfig returns a copy holding cfg, unless a configuration is already set.
func (e Exhibit) WithConfig(cfg Configuration) Exhibit {
	if e.config != nil {
		return e
	}
	e.config = &cfg
	return e
}

// Patch is a partial exhibit update. Nil fields are unchanged.
// ContactEmails, when set, replaces the whole list.
type Patch struct {
	Title         *string
	Subtitle      *string
	Description   *string
	Facets        *[]string
	ContactEmails *ContactEmails
	Published     *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Subtitle == nil && p.Description == nil &&
		p.Facets == nil && p.ContactEmails == nil && p.Published == nil
}

// Apply validates the patched attributes and returns the updated exhibit.
// The slug never changes.
func (e Exhibit) Apply(p Patch, now time.Time) (Exhibit, error) {
	if p.IsEmpty() {
		return Exhibit{}, domain.NewValidationError("exhibit", "at least one field must be provided")
	}
	attrs := e.Attributes()
	if p.Title != nil {
		attrs.Title = *p.Title
	}
	if p.Subtitle != nil {
		attrs.Subtitle = *p.Subtitle
	}
	if p.Description != nil {
		attrs.Description = *p.Description
	}
	if p.Facets != nil {
		attrs.Facets = *p.Facets
	}
	if p.ContactEmails != nil {
		attrs.ContactEmails = *p.ContactEmails
	}
	if p.Published != nil {
		attrs.Published = *p.Published
	}
	if err := attrs.validate(); err != nil {
		return Exhibit{}, err
	}

	e.title = attrs.Title
	e.subtitle = attrs.Subtitle
	e.description = attrs.Description
	e.facets = slices.Clone(attrs.Facets)
	e.contactEmails = slices.Clone(attrs.ContactEmails)
	e.published = attrs.Published
	e.updatedAt = now
	return e, nil
}

func mergeValidation(errs ...error) error {
	out := &domain.ValidationError{Fields: make(map[string]string)}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("validate exhibit: %w", err)
		}
		for k, v := range verr.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
