// Package feature holds the fixed catalog of map layers and decides which of them a
// theme needs.
package feature

import (
	"fmt"
	"strings"
)

type Kind string

const (
	Streets   Kind = "streets"
	Water     Kind = "water"
	Parks     Kind = "parks"
	Stadiums  Kind = "stadiums"
	Railway   Kind = "railway"
	Forest    Kind = "forest"
	Beach     Kind = "beach"
	Coastline Kind = "coastline"
	Education Kind = "education"
	Worship   Kind = "worship"
	Airport   Kind = "airport"
)

// canonical order; progress output and working-set iteration follow it
var all = []Kind{
	Streets, Water, Parks, Stadiums, Railway, Forest,
	Beach, Coastline, Education, Worship, Airport,
}

func All() []Kind {
	out := make([]Kind, len(all))
	copy(out, all)
	return out
}

// Optional is every kind except streets.
func Optional() []Kind {
	return All()[1:]
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range all {
		if k == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown feature kind %q", s)
}

func (k Kind) String() string { return string(k) }

// ThemeKey is the theme attribute whose presence enables the kind.
func (k Kind) ThemeKey() string { return string(k) }

// IsGraph is true for the only kind that is stored as a node/edge graph.
func (k Kind) IsGraph() bool { return k == Streets }

func (k Kind) index() int {
	for i, v := range all {
		if v == k {
			return i
		}
	}
	return len(all)
}
