package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/mohammed-shakir/city-map-poster/internal/feature"
	"github.com/mohammed-shakir/city-map-poster/internal/theme"
)

// GeoJSONRenderer exports the styled poster layers as one FeatureCollection.
// Each feature carries layer, color, z and, for strokes, width.
type GeoJSONRenderer struct {
	Dir    string
	Logger *slog.Logger
	Now    func() time.Time
}

func NewGeoJSON(dir string, logger *slog.Logger) *GeoJSONRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeoJSONRenderer{Dir: dir, Logger: logger, Now: time.Now}
}

func (r *GeoJSONRenderer) Render(ctx context.Context, p Poster) (string, error) {
	if p.Layers == nil {
		return "", fmt.Errorf("render: no layers")
	}
	fc, err := Compose(p)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := OutputPath(r.Dir, p.City, p.Theme.ID, r.Now(), ".geojson")
	b, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("encode poster: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write poster: %w", err)
	}
	r.Logger.InfoContext(ctx, "poster written", "path", path, "features", len(fc.Features))
	return path, nil
}

// Compose builds the styled collection, streets last so they draw on top.
func Compose(p Poster) (*geojson.FeatureCollection, error) {
	ws := p.Layers
	g := ws.Streets()
	if g == nil {
		return nil, fmt.Errorf("render: working set has no street network")
	}
	bounds := g.Bounds()

	fc := geojson.NewFeatureCollection()
	fc.BBox = geojson.NewBBox(bounds)
	fc.ExtraMembers = geojson.Properties{
		"title":          SpacedTitle(p.City),
		"country":        p.Country,
		"coordinates":    p.Location.String(),
		"theme":          p.Theme.ID,
		"theme_name":     p.Theme.DisplayName(),
		"bg":             p.Theme.ColorOr("bg", "#FFFFFF"),
		"text":           p.Theme.ColorOr("text", "#000000"),
		"gradient_color": p.Theme.ColorOr("gradient_color", p.Theme.ColorOr("bg", "#FFFFFF")),
	}
	if len(ws.Omissions) > 0 {
		omitted := make([]string, 0, len(ws.Omissions))
		for _, k := range ws.Omitted() {
			omitted = append(omitted, string(k))
		}
		fc.ExtraMembers["omitted"] = omitted
	}

	for _, k := range ws.Kinds() {
		if k == feature.Streets {
			continue
		}
		l, _ := ws.Get(k)
		if l.Empty || l.Features == nil {
			continue
		}
		st, ok := StyleFor(k)
		if !ok {
			continue
		}
		color, _ := p.Theme.Color(k.ThemeKey())
		for _, f := range l.Features.Features {
			if out := styleFeature(k, st, color, f, bounds); out != nil {
				fc.Append(out)
			}
		}
	}

	idx := g.NodeIndex()
	for _, e := range g.Edges {
		ls, ok := e.LineString(idx)
		if !ok {
			continue
		}
		key, width := RoadClass(e.Highway)
		color, _ := p.Theme.Color(key)
		f := geojson.NewFeature(ls)
		f.Properties["layer"] = string(feature.Streets)
		f.Properties["highway"] = e.Highway
		if e.Name != "" {
			f.Properties["name"] = e.Name
		}
		f.Properties["color"] = Sample(color, position(color, ls.Bound().Center(), bounds), roadFallback)
		f.Properties["width"] = width
		f.Properties["z"] = streetsZ
		fc.Append(f)
	}
	return fc, nil
}

func styleFeature(k feature.Kind, st LayerStyle, color theme.Color, f *geojson.Feature, bounds orb.Bound) *geojson.Feature {
	geom := f.Geometry
	switch st.mode {
	case modeArea:
		switch geom.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil
		}
	case modeCentroid:
		c, _ := planar.CentroidArea(geom)
		geom = c
	}
	out := geojson.NewFeature(geom)
	out.ID = f.ID
	for key, v := range f.Properties {
		out.Properties[key] = v
	}
	out.Properties["layer"] = string(k)
	out.Properties["color"] = Sample(color, position(color, geom.Bound().Center(), bounds), st.Fallback)
	out.Properties["z"] = st.Z
	if st.Alpha < 1 {
		out.Properties["alpha"] = st.Alpha
	}
	if st.Width > 0 {
		out.Properties["width"] = st.Width
	}
	if st.Marker > 0 {
		out.Properties["marker_size"] = st.Marker
	}
	return out
}

// position places p along the gradient direction of c within bounds.
func position(c theme.Color, p orb.Point, bounds orb.Bound) float64 {
	if !c.IsGradient() {
		return 0
	}
	if c.Direction == theme.Horizontal {
		w := bounds.Max.X() - bounds.Min.X()
		if w == 0 {
			return 0
		}
		return (p.X() - bounds.Min.X()) / w
	}
	h := bounds.Max.Y() - bounds.Min.Y()
	if h == 0 {
		return 0
	}
	return (p.Y() - bounds.Min.Y()) / h
}
