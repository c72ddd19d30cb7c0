package overpass

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
)

// Way filters per network type, in Overpass QL tag-filter syntax.
var networkFilters = map[model.NetworkType]string{
	model.NetworkDrive: `["highway"]["area"!~"yes"]` +
		`["highway"!~"abandoned|bridleway|bus_guideway|construction|corridor|cycleway|elevator|escalator|footway|no|path|pedestrian|planned|platform|proposed|raceway|razed|service|steps|track"]` +
		`["motor_vehicle"!~"no"]["motorcar"!~"no"]["access"!~"private"]` +
		`["service"!~"alley|driveway|emergency_access|parking|parking_aisle|private"]`,
	model.NetworkWalk: `["highway"]["area"!~"yes"]` +
		`["highway"!~"abandoned|bus_guideway|construction|cycleway|motor|no|planned|platform|proposed|raceway|razed"]` +
		`["foot"!~"no"]["access"!~"private"]["service"!~"private"]`,
	model.NetworkBike: `["highway"]["area"!~"yes"]` +
		`["highway"!~"abandoned|bus_guideway|construction|corridor|elevator|escalator|footway|motor|no|planned|platform|proposed|raceway|razed|steps"]` +
		`["bicycle"!~"no"]["access"!~"private"]["service"!~"private"]`,
	model.NetworkAll: `["highway"]["area"!~"yes"]` +
		`["highway"!~"abandoned|construction|no|planned|platform|proposed|raceway|razed"]`,
}

// BBox is the square of radius meters around loc, matching a bbox-distance query.
func BBox(loc model.Location, radiusMeters int) orb.Bound {
	return geo.NewBoundAroundPoint(loc.Point(), float64(radiusMeters))
}

// bboxFilter renders (south,west,north,east).
func bboxFilter(b orb.Bound) string {
	return fmt.Sprintf("(%.7f,%.7f,%.7f,%.7f)", b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
}

func header(timeoutSec int) string {
	if timeoutSec <= 0 {
		timeoutSec = 180
	}
	return fmt.Sprintf("[out:json][timeout:%d];", timeoutSec)
}

// StreetsQuery selects highway ways for the network type plus their nodes.
func StreetsQuery(b orb.Bound, network model.NetworkType, timeoutSec int) (string, error) {
	f, ok := networkFilters[network]
	if !ok {
		return "", fmt.Errorf("%w: unknown network type %q", model.ErrConfig, network)
	}
	var sb strings.Builder
	sb.WriteString(header(timeoutSec))
	sb.WriteString("way")
	sb.WriteString(f)
	sb.WriteString(bboxFilter(b))
	sb.WriteString(";out body;>;out skel qt;")
	return sb.String(), nil
}

// FeatureQuery selects nodes, ways and relations matching any of the kind's tags.
func FeatureQuery(b orb.Bound, kind feature.Kind, timeoutSec int) (string, error) {
	r, ok := feature.RuleFor(kind)
	if !ok {
		return "", fmt.Errorf("no tag rule for %s", kind)
	}
	bb := bboxFilter(b)
	var sb strings.Builder
	sb.WriteString(header(timeoutSec))
	sb.WriteString("(")
	for _, t := range r.Tags {
		sb.WriteString("nwr")
		sb.WriteString(tagFilter(t))
		sb.WriteString(bb)
		sb.WriteString(";")
	}
	sb.WriteString(");out body;>;out skel qt;")
	return sb.String(), nil
}

func tagFilter(t feature.Tag) string {
	if len(t.Values) == 1 {
		return fmt.Sprintf(`[%q=%q]`, t.Key, t.Values[0])
	}
	quoted := make([]string, len(t.Values))
	for i, v := range t.Values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return fmt.Sprintf(`[%q~"^(%s)$"]`, t.Key, strings.Join(quoted, "|"))
}

// matches reports whether tags satisfy any of the kind's tag conditions.
func matches(r feature.Rule, tags map[string]string) bool {
	for _, t := range r.Tags {
		v, ok := tags[t.Key]
		if !ok {
			continue
		}
		for _, want := range t.Values {
			if v == want {
				return true
			}
		}
	}
	return false
}
