// Package render turns a resolved working set into a poster artifact.
package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/fetch"
	"github.com/mohammed-shakir/city-map-poster/internal/theme"
)

// Poster is everything a renderer needs. Absent and empty layers are skipped.
type Poster struct {
	City     string
	Country  string
	Location model.Location
	Theme    theme.Theme
	Layers   *fetch.WorkingSet
}

type Renderer interface {
	// Render writes the artifact and returns its path.
	Render(ctx context.Context, p Poster) (string, error)
}

// OutputPath is <dir>/<city_slug>_<theme>_<YYYYMMDD_HHMMSS><ext>.
func OutputPath(dir, city, themeID string, at time.Time, ext string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(city)), " ", "_")
	name := fmt.Sprintf("%s_%s_%s%s", slug, themeID, at.Format("20060102_150405"), ext)
	return filepath.Join(dir, name)
}

// SpacedTitle renders the city the way the poster prints it: "P  A  R  I  S".
func SpacedTitle(city string) string {
	rs := []rune(strings.ToUpper(city))
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, "  ")
}
