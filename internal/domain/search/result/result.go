package result

import (
	"net/url"
	"strings"
)

// Hit is a raw document returned by the index, in ranking order.
type Hit struct {
	id     string
	fields map[string][]string
}

// NewHit creates a hit.
func NewHit(id string, fields map[string][]string) Hit {
	return Hit{id: id, fields: fields}
}

// ID returns the document identifier.
func (h Hit) ID() string { return h.id }

// Fields returns the stored document fields.
func (h Hit) Fields() map[string][]string { return h.fields }

// First returns the first value of a field, or "".
func (h Hit) First(name string) string {
	if name == "" {
		return ""
	}
	vs := h.fields[name]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Page is an ordered slice of hits plus the index's total match count.
type Page struct {
	Hits  []Hit
	Total int
}

// Document is the projected shape returned to autocomplete clients.
// Every field is always present; absent values are empty strings.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
}

// FieldMap names the index fields that feed each projected attribute.
type FieldMap struct {
	Title       string
	Description string
	Thumbnail   string
	URL         string
}

// Projector turns hits into Documents.
type Projector struct {
	fields      FieldMap
	urlTemplate string
}

// NewProjector creates a Projector. urlTemplate may reference {exhibit} and {id};
// when empty the URL comes from the mapped URL field.
func NewProjector(fields FieldMap, urlTemplate string) Projector {
	return Projector{fields: fields, urlTemplate: urlTemplate}
}

// Project maps a hit to a Document for the given exhibit slug.
func (p Projector) Project(exhibit string, h Hit) Document {
	doc := Document{
		ID:          h.ID(),
		Title:       h.First(p.fields.Title),
		Description: h.First(p.fields.Description),
		Thumbnail:   h.First(p.fields.Thumbnail),
		URL:         h.First(p.fields.URL),
	}
	if p.urlTemplate != "" && h.ID() != "" {
		doc.URL = strings.NewReplacer("{exhibit}", exhibit, "{id}", url.PathEscape(h.ID())).Replace(p.urlTemplate)
	}
	return doc
}

// ProjectAll maps hits preserving their order.
func (p Projector) ProjectAll(exhibit string, hits []Hit) []Document {
	docs := make([]Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, p.Project(exhibit, h))
	}
	return docs
}
