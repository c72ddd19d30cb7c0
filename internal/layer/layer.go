// Package layer holds fetched geometry for one feature kind and its cache encoding.
package layer

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/city-map-poster/internal/feature"
)

// Layer is either a street graph or a feature collection. Empty layers carry neither.
type Layer struct {
	Kind     feature.Kind
	Empty    bool
	Graph    *Graph
	Features *geojson.FeatureCollection
}

func NewGraphLayer(g *Graph) Layer {
	return Layer{Kind: feature.Streets, Graph: g, Empty: g == nil || len(g.Edges) == 0}
}

func NewFeatureLayer(kind feature.Kind, fc *geojson.FeatureCollection) Layer {
	return Layer{Kind: kind, Features: fc, Empty: fc == nil || len(fc.Features) == 0}
}

func NewEmpty(kind feature.Kind) Layer {
	return Layer{Kind: kind, Empty: true}
}

// Size is the edge count for graphs and the feature count otherwise.
func (l Layer) Size() int {
	switch {
	case l.Graph != nil:
		return len(l.Graph.Edges)
	case l.Features != nil:
		return len(l.Features.Features)
	default:
		return 0
	}
}

type Node struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func (n Node) Point() orb.Point { return orb.Point{n.X, n.Y} }

type Edge struct {
	U       int64   `json:"u"`
	V       int64   `json:"v"`
	WayID   int64   `json:"way"`
	Highway string  `json:"highway,omitempty"`
	Name    string  `json:"name,omitempty"`
	Oneway  bool    `json:"oneway,omitempty"`
	Length  float64 `json:"length"`
}

// Graph is the street network: nodes in lon/lat with edges between consecutive way nodes.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeIndex maps node IDs to positions. Callers build it once per pass.
func (g *Graph) NodeIndex() map[int64]orb.Point {
	idx := make(map[int64]orb.Point, len(g.Nodes))
	for _, n := range g.Nodes {
		idx[n.ID] = n.Point()
	}
	return idx
}

// LineString returns the edge geometry, or false when an endpoint is not in idx.
func (e Edge) LineString(idx map[int64]orb.Point) (orb.LineString, bool) {
	u, ok := idx[e.U]
	if !ok {
		return nil, false
	}
	v, ok := idx[e.V]
	if !ok {
		return nil, false
	}
	return orb.LineString{u, v}, true
}

func (g *Graph) Bounds() orb.Bound {
	if len(g.Nodes) == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{Min: g.Nodes[0].Point(), Max: g.Nodes[0].Point()}
	for _, n := range g.Nodes[1:] {
		b = b.Extend(n.Point())
	}
	return b
}

func (g *Graph) Len() int { return len(g.Edges) }
