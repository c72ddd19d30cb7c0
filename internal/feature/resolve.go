package feature

import (
	"sort"
	"strings"

	"github.com/mohammed-shakir/city-map-poster/internal/theme"
)

// RequiredSet is ordered canonically and always starts with streets.
type RequiredSet []Kind

// Resolve picks streets plus every optional kind the theme gives a non-empty color.
func Resolve(t theme.Theme) RequiredSet {
	out := RequiredSet{Streets}
	for _, k := range Optional() {
		if t.Has(k.ThemeKey()) {
			out = append(out, k)
		}
	}
	return out
}

// NewRequiredSet normalises an arbitrary list: dedupes, adds streets, sorts canonically.
func NewRequiredSet(kinds ...Kind) RequiredSet {
	seen := map[Kind]bool{Streets: true}
	out := RequiredSet{Streets}
	for _, k := range kinds {
		if seen[k] || k.index() == len(all) {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].index() < out[j].index() })
	return out
}

func (s RequiredSet) Contains(k Kind) bool {
	for _, v := range s {
		if v == k {
			return true
		}
	}
	return false
}

// Optional counts the kinds besides streets.
func (s RequiredSet) Optional() int {
	n := 0
	for _, v := range s {
		if v != Streets {
			n++
		}
	}
	return n
}

func (s RequiredSet) Names() []string {
	out := make([]string, len(s))
	for i, k := range s {
		out[i] = string(k)
	}
	return out
}

func (s RequiredSet) String() string {
	return strings.Join(s.Names(), ",")
}
