package db

// TagFilter constrains a TAG field to contain a value. Filters are ANDed.
type TagFilter struct {
	Field string
	Value string
}

// Query is the input for a filtered full-text search.
// Text clauses are ANDed with each other and with the filters; with neither,
// every document in the index matches.
type Query struct {
	IndexName    string
	TextFields   []string
	Text         []string
	Filters      []TagFilter
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
