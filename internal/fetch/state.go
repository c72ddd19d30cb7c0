package fetch

// State is where a feature kind sits in its resolution.
type State string

const (
	StatePending       State = "pending"
	StateFetching      State = "fetching"
	StateResolved      State = "resolved"
	StateResolvedEmpty State = "resolved_empty"
	StateFailed        State = "failed"
)

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateResolvedEmpty || s == StateFailed
}

// Source says where a resolved layer came from.
type Source string

const (
	SourceNone     Source = ""
	SourceCache    Source = "cache"
	SourceUpstream Source = "upstream"
)
