package render

import (
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
)

// RoadClass maps an OSM highway value to its theme key and stroke width.
func RoadClass(highway string) (key string, width float64) {
	switch highway {
	case "motorway", "motorway_link":
		return "road_motorway", 1.2
	case "trunk", "trunk_link", "primary", "primary_link":
		return "road_primary", 1.0
	case "secondary", "secondary_link":
		return "road_secondary", 0.8
	case "tertiary", "tertiary_link":
		return "road_tertiary", 0.6
	case "residential", "living_street", "unclassified":
		return "road_residential", 0.4
	default:
		return "road_default", 0.4
	}
}

const roadFallback = "#3A3A3A"

type geomMode int

const (
	modeArea     geomMode = iota // polygons only
	modeLine                     // strokes, no fill
	modeCentroid                 // one marker per feature
)

// LayerStyle is how one optional kind is drawn.
type LayerStyle struct {
	Fallback string
	Z        float64
	Alpha    float64
	Width    float64
	Marker   float64
	mode     geomMode
}

var styles = map[feature.Kind]LayerStyle{
	feature.Coastline: {Fallback: "#1E90FF", Z: 0.5, Alpha: 1, Width: 1.25, mode: modeLine},
	feature.Forest:    {Fallback: "#228B22", Z: 1, Alpha: 1, mode: modeArea},
	feature.Beach:     {Fallback: "#F4A460", Z: 1.2, Alpha: 1, mode: modeArea},
	feature.Water:     {Fallback: "#C0C0C0", Z: 1.5, Alpha: 1, mode: modeArea},
	feature.Parks:     {Fallback: "#F0F0F0", Z: 2, Alpha: 1, mode: modeArea},
	feature.Airport:   {Fallback: "#D3D3D3", Z: 2.2, Alpha: 0.6, mode: modeArea},
	feature.Education: {Fallback: "#FFD700", Z: 2.3, Alpha: 0.5, mode: modeArea},
	feature.Stadiums:  {Fallback: "#E8D5B7", Z: 3, Alpha: 1, Marker: 80, mode: modeCentroid},
	feature.Worship:   {Fallback: "#8B4513", Z: 3, Alpha: 1, Marker: 30, mode: modeCentroid},
	feature.Railway:   {Fallback: "#A9A9A9", Z: 3.5, Alpha: 1, Width: 0.8, mode: modeLine},
}

// streets draw above every optional layer and below the text overlay
const streetsZ = 4

// StyleFor returns the drawing style of an optional kind.
func StyleFor(k feature.Kind) (LayerStyle, bool) {
	s, ok := styles[k]
	return s, ok
}
