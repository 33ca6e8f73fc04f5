package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vitrine/internal/domain"
)

// Reserved keys of a stored query.
const (
	KeyText   = "q"
	KeyFacets = "f"
)

// Params is the stored filter state of a saved search: optional free text under
// "q", facet constraints under "f" and any other top-level key -> values pair.
// Every key other than "q" is a field constraint the index must apply; nested
// objects outside "f" cannot be expressed as one and are rejected.
type Params struct {
	text   string
	facets map[string][]string
	extra  map[string][]string
}

// NewParams builds Params from already-typed parts. Empty values are dropped.
func NewParams(text string, facets map[string][]string) Params {
	p := Params{text: strings.TrimSpace(text)}
	for k, vs := range facets {
		p.addFacet(k, vs...)
	}
	return p
}

// Parse converts a decoded JSON object into Params.
// It fails with a validation error when the mapping cannot be expressed as
// key -> [values] pairs.
func Parse(raw map[string]any) (Params, error) {
	var p Params
	for key, v := range raw {
		switch key {
		case KeyText:
			vals, err := scalars(v)
			if err != nil {
				return Params{}, malformed(key, err)
			}
			p.text = strings.TrimSpace(strings.Join(vals, " "))
		case KeyFacets:
			obj, ok := v.(map[string]any)
			if !ok {
				if v == nil {
					continue
				}
				return Params{}, malformed(key, fmt.Errorf("must be an object"))
			}
			for field, fv := range obj {
				vals, err := scalars(fv)
				if err != nil {
					return Params{}, malformed(key+"."+field, err)
				}
				p.addFacet(field, vals...)
			}
		default:
			if err := p.addExtra(key, v); err != nil {
				return Params{}, err
			}
		}
	}
	return p, nil
}

// Text returns the stored free-text query.
func (p Params) Text() string { return p.text }

// Facets returns a copy of the facet constraints.
func (p Params) Facets() map[string][]string { return cloneValues(p.facets) }

// FacetFields returns facet field names in sorted order.
func (p Params) FacetFields() []string {
	return slices.Sorted(maps.Keys(p.facets))
}

// Extra returns a copy of the top-level keys that are neither text nor facets.
func (p Params) Extra() map[string][]string { return cloneValues(p.extra) }

// Filters returns every field constraint the index must apply: facets and
// top-level keys merged, values deduplicated. Values of one field are
// intersected, never unioned.
func (p Params) Filters() map[string][]string {
	out := cloneValues(p.facets)
	for k, vs := range p.extra {
		if out == nil {
			out = make(map[string][]string, len(p.extra))
		}
		for _, v := range vs {
			if !slices.Contains(out[k], v) {
				out[k] = append(out[k], v)
			}
		}
	}
	return out
}

// FilterFields returns the constrained field names of Filters in sorted order.
func (p Params) FilterFields() []string {
	return slices.Sorted(maps.Keys(p.Filters()))
}

// IsEmpty reports whether no constraint is stored.
func (p Params) IsEmpty() bool {
	return p.text == "" && len(p.facets) == 0 && len(p.extra) == 0
}

// Equal reports whether both Params hold the same constraints.
func (p Params) Equal(o Params) bool {
	return p.text == o.text && valuesEqual(p.facets, o.facets) && valuesEqual(p.extra, o.extra)
}

// MarshalJSON encodes Params as {"q": "...", "f": {...}, "<extra>": [...]}.
// Map keys are sorted by encoding/json, so the output is canonical.
func (p Params) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.extra)+2)
	for k, vs := range p.extra {
		out[k] = vs
	}
	if p.text != "" {
		out[KeyText] = p.text
	}
	if len(p.facets) > 0 {
		out[KeyFacets] = p.facets
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the format produced by MarshalJSON.
func (p *Params) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode query params: %w", err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Canonical returns the stable JSON encoding, used for cache keys and storage.
func (p Params) Canonical() string {
	b, err := p.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

func (p *Params) addFacet(field string, vals ...string) {
	field = strings.TrimSpace(field)
	if field == "" {
		return
	}
	for _, v := range vals {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		if p.facets == nil {
			p.facets = make(map[string][]string)
		}
		if !slices.Contains(p.facets[field], v) {
			p.facets[field] = append(p.facets[field], v)
		}
	}
}

func (p *Params) addExtra(key string, v any) error {
	if !validField(key) {
		return malformed(key, errFieldName)
	}
	if _, ok := v.(map[string]any); ok {
		return malformed(key, errors.New("nested objects cannot be used as an index filter"))
	}
	vals, err := scalars(v)
	if err != nil {
		return malformed(key, err)
	}
	if len(vals) == 0 {
		return nil
	}
	if p.extra == nil {
		p.extra = make(map[string][]string)
	}
	for _, val := range vals {
		if val = strings.TrimSpace(val); val != "" && !slices.Contains(p.extra[key], val) {
			p.extra[key] = append(p.extra[key], val)
		}
	}
	return nil
}

var errFieldName = errors.New("field names may only contain letters, digits, '_' and '-'")

// validField reports whether name can address an index field.
func validField(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

// scalars flattens a JSON scalar or array of scalars into strings.
func scalars(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, err := scalar(item)
			if err != nil {
				return nil, err
			}
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return slices.Clone(t), nil
	default:
		s, err := scalar(t)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	}
}

func scalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

func malformed(key string, err error) error {
	return &domain.ValidationError{Fields: map[string]string{
		"query_params": fmt.Sprintf("%s: %v", key, err),
	}}
}

func cloneValues(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, vs := range m {
		out[k] = slices.Clone(vs)
	}
	return out
}

func valuesEqual(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		as, bs := slices.Clone(av), slices.Clone(bv)
		sort.Strings(as)
		sort.Strings(bs)
		if !slices.Equal(as, bs) {
			return false
		}
	}
	return true
}
