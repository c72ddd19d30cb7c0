package overpass

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/osm"
)

type response struct {
	Remark   string    `json:"remark"`
	Elements []element `json:"elements"`
}

type element struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Lat     float64           `json:"lat"`
	Lon     float64           `json:"lon"`
	Nodes   []int64           `json:"nodes"`
	Members []member          `json:"members"`
	Tags    map[string]string `json:"tags"`
}

type member struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

func decodeResponse(body []byte) (*response, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	// Overpass reports query timeouts and memory exhaustion as a remark on a 200.
	if len(r.Elements) == 0 && strings.Contains(strings.ToLower(r.Remark), "error") {
		return nil, fmt.Errorf("overpass remark: %s", r.Remark)
	}
	return &r, nil
}

// toOSM converts elements into an osm.OSM, deduplicating repeated elements.
// The `out body; >; out skel` pattern returns some nodes twice.
func (r *response) toOSM() *osm.OSM {
	o := &osm.OSM{}
	seen := make(map[string]struct{}, len(r.Elements))
	for _, e := range r.Elements {
		id := fmt.Sprintf("%s/%d", e.Type, e.ID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		switch e.Type {
		case "node":
			o.Nodes = append(o.Nodes, &osm.Node{
				ID:      osm.NodeID(e.ID),
				Lat:     e.Lat,
				Lon:     e.Lon,
				Tags:    tagsOf(e.Tags),
				Visible: true,
			})
		case "way":
			wn := make(osm.WayNodes, len(e.Nodes))
			for i, n := range e.Nodes {
				wn[i] = osm.WayNode{ID: osm.NodeID(n)}
			}
			o.Ways = append(o.Ways, &osm.Way{
				ID:      osm.WayID(e.ID),
				Nodes:   wn,
				Tags:    tagsOf(e.Tags),
				Visible: true,
			})
		case "relation":
			ms := make(osm.Members, 0, len(e.Members))
			for _, m := range e.Members {
				ms = append(ms, osm.Member{Type: osm.Type(m.Type), Ref: m.Ref, Role: m.Role})
			}
			o.Relations = append(o.Relations, &osm.Relation{
				ID:      osm.RelationID(e.ID),
				Members: ms,
				Tags:    tagsOf(e.Tags),
				Visible: true,
			})
		}
	}
	return o
}

func tagsOf(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	t := make(osm.Tags, 0, len(m))
	for k, v := range m {
		t = append(t, osm.Tag{Key: k, Value: v})
	}
	t.SortByKeyValue()
	return t
}
