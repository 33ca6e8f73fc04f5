package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FieldKind is the FT schema type of a catalog field.
type FieldKind int

const (
	// FieldText is full-text searchable.
	FieldText FieldKind = iota
	// FieldTag holds exact facet values.
	FieldTag
)

// SchemaField is one attribute of an FT index over hash documents.
type SchemaField struct {
	Name string
	Kind FieldKind

	// Weight scales text relevance; zero keeps the server default.
	Weight   float64
	Sortable bool

	// Separator splits multi-valued tags; empty keeps the server default.
	Separator string
}

// IndexDefinition is an FT.CREATE definition. Documents are always hashes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []SchemaField
}

// IndexBuilder assembles an IndexDefinition.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes the index covers.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Text adds a TEXT field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, SchemaField{Name: name, Kind: FieldText})
	return b
}

// TextWeighted adds a sortable TEXT field with a relevance weight.
func (b *IndexBuilder) TextWeighted(name string, weight float64) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, SchemaField{Name: name, Kind: FieldText, Weight: weight, Sortable: true})
	return b
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.TagSeparated(name, "")
}

// TagSeparated adds a TAG field whose stored value lists several facet values.
func (b *IndexBuilder) TagSeparated(name, separator string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, SchemaField{Name: name, Kind: FieldTag, Separator: separator})
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// Validate checks that the definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name is required at position %d", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = true
		if f.Weight < 0 {
			return fmt.Errorf("text weight must not be negative: %s", f.Name)
		}
		if f.Kind != FieldText && f.Kind != FieldTag {
			return fmt.Errorf("unknown kind for field %s", f.Name)
		}
	}
	return nil
}

// Args renders the FT.CREATE arguments that follow the command name.
func (idx *IndexDefinition) Args() []string {
	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for _, f := range idx.Fields {
		args = append(args, f.Name)
		switch f.Kind {
		case FieldText:
			args = append(args, "TEXT")
			if f.Weight > 0 {
				args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'g', -1, 64))
			}
		case FieldTag:
			args = append(args, "TAG")
			if f.Separator != "" {
				args = append(args, "SEPARATOR", f.Separator)
			}
		}
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
	}
	return args
}

// String resembles the FT.CREATE command, without the PREFIX count.
func (idx *IndexDefinition) String() string {
	args := idx.Args()
	if len(idx.Prefixes) > 0 {
		args = append(args[:4:4], args[5:]...)
	}
	return strings.Join(append([]string{"FT.CREATE"}, args...), " ")
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != ':' && r != '-' {
			return false
		}
	}
	return true
}
