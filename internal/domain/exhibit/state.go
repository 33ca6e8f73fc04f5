package exhibit

// State is a step of exhibit default initialization.
type State int

const (
	// StateNew is a validated exhibit that has not been persisted.
	StateNew State = iota
	// StateConfigInitialized means the configuration sub-object exists.
	StateConfigInitialized
	// StateSearchesInitialized means the saved search collection is non-empty.
	StateSearchesInitialized
	// StateHomePageInitialized means creation of the default home page was attempted.
	StateHomePageInitialized
	// StateReady is terminal.
	StateReady
)

var stateNames = [...]string{"new", "config_initialized", "searches_initialized", "home_page_initialized", "ready"}

func (s State) String() string {
	if s < StateNew || s > StateReady {
		return "unknown"
	}
	return stateNames[s]
}

// Next returns the following state. Ready has no successor and returns itself
// with ok=false.
func (s State) Next() (State, bool) {
	if s >= StateReady {
		return StateReady, false
	}
	return s + 1, true
}
