package overpass

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/mohammed-shakir/city-map-poster/internal/layer"
)

// buildGraph makes one edge per consecutive node pair of each highway way.
// Nodes referenced by no edge are dropped.
func buildGraph(r *response) *layer.Graph {
	pos := make(map[int64]orb.Point)
	for _, e := range r.Elements {
		if e.Type == "node" {
			pos[e.ID] = orb.Point{e.Lon, e.Lat}
		}
	}

	g := &layer.Graph{}
	used := make(map[int64]struct{})
	seenWay := make(map[int64]struct{})
	for _, e := range r.Elements {
		if e.Type != "way" || e.Tags["highway"] == "" {
			continue
		}
		if _, dup := seenWay[e.ID]; dup {
			continue
		}
		seenWay[e.ID] = struct{}{}
		oneway := isOneway(e.Tags)
		for i := 1; i < len(e.Nodes); i++ {
			u, v := e.Nodes[i-1], e.Nodes[i]
			pu, okU := pos[u]
			pv, okV := pos[v]
			if !okU || !okV || u == v {
				continue
			}
			g.Edges = append(g.Edges, layer.Edge{
				U:       u,
				V:       v,
				WayID:   e.ID,
				Highway: e.Tags["highway"],
				Name:    e.Tags["name"],
				Oneway:  oneway,
				Length:  geo.Distance(pu, pv),
			})
			used[u] = struct{}{}
			used[v] = struct{}{}
		}
	}

	g.Nodes = make([]layer.Node, 0, len(used))
	for id := range used {
		p := pos[id]
		g.Nodes = append(g.Nodes, layer.Node{ID: id, X: p.Lon(), Y: p.Lat()})
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	return g
}

func isOneway(tags map[string]string) bool {
	switch tags["oneway"] {
	case "yes", "true", "1", "-1", "reverse":
		return true
	}
	return tags["junction"] == "roundabout"
}
