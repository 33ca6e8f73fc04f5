package exhibit

// DefaultPerPage is the page size of a freshly initialized configuration.
const DefaultPerPage = 10

// Configuration holds per-exhibit search display settings.
type Configuration struct {
	PerPage     int      `json:"per_page"`
	FacetFields []string `json:"facet_fields,omitempty"`
	SortFields  []string `json:"sort_fields,omitempty"`
}

// DefaultConfiguration returns the settings new exhibits start with.
func DefaultConfiguration() Configuration {
	return Configuration{PerPage: DefaultPerPage}
}
