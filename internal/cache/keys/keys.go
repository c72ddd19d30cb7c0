// Package keys derives the per-layer cache identity.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
)

// Coordinates are rounded to this many decimals (about 11cm) so repeated geocoding of
// the same place lands on the same entry. Changing it changes the cache format.
const Precision = 6

const formatVersion = "v1"

// digestLen hex chars = 160 bits
const digestLen = 40

type Key struct {
	Kind   feature.Kind
	Digest string
}

// String is safe as a file name and as a redis key suffix.
func (k Key) String() string {
	return string(k.Kind) + "-" + k.Digest
}

func (k Key) Short() string {
	if len(k.Digest) < 8 {
		return k.Digest
	}
	return k.Digest[:8]
}

// Build is pure: the key depends on the four inputs only, never on the rest of the
// required feature set, so themes sharing a kind share its cache entry.
func Build(loc model.Location, radiusMeters int, network model.NetworkType, kind feature.Kind) Key {
	sum := sha256.Sum256([]byte(Canonical(loc, radiusMeters, network, kind)))
	return Key{Kind: kind, Digest: hex.EncodeToString(sum[:])[:digestLen]}
}

// Canonical is the string form that gets digested.
func Canonical(loc model.Location, radiusMeters int, network model.NetworkType, kind feature.Kind) string {
	return strings.Join([]string{
		formatVersion,
		coord(loc.Lat),
		coord(loc.Lon),
		fmt.Sprintf("%d", radiusMeters),
		strings.ToLower(strings.TrimSpace(string(network))),
		strings.ToLower(strings.TrimSpace(string(kind))),
	}, "|")
}

func coord(v float64) string {
	p := math.Pow10(Precision)
	r := math.Round(v*p) / p
	if r == 0 {
		r = 0 // folds -0
	}
	return fmt.Sprintf("%.*f", Precision, r)
}
