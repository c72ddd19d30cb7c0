// Package theme loads named color themes from a directory of JSON files.
package theme

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
)

type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
)

// Color is either a solid hex value or a gradient.
type Color struct {
	Hex       string
	Gradient  []string
	Direction Direction
}

func (c Color) IsGradient() bool { return len(c.Gradient) > 0 }

// Empty reports whether the value carries no usable color at all.
func (c Color) Empty() bool {
	if strings.TrimSpace(c.Hex) != "" {
		return false
	}
	for _, g := range c.Gradient {
		if strings.TrimSpace(g) != "" {
			return false
		}
	}
	return true
}

// Theme is immutable once loaded.
type Theme struct {
	ID          string
	Name        string
	Description string
	colors      map[string]Color
}

func New(id, name string, colors map[string]Color) Theme {
	cp := make(map[string]Color, len(colors))
	for k, v := range colors {
		cp[k] = v
	}
	return Theme{ID: id, Name: name, colors: cp}
}

// Color returns the value stored under key, if any.
func (t Theme) Color(key string) (Color, bool) {
	c, ok := t.colors[key]
	return c, ok
}

// Has is true when key is present with a non-empty value.
func (t Theme) Has(key string) bool {
	c, ok := t.colors[key]
	return ok && !c.Empty()
}

// ColorOr returns the solid color for key, or the first gradient stop, or def.
func (t Theme) ColorOr(key, def string) string {
	c, ok := t.colors[key]
	if !ok || c.Empty() {
		return def
	}
	if c.Hex != "" {
		return c.Hex
	}
	return c.Gradient[0]
}

func (t Theme) Keys() []string {
	out := make([]string, 0, len(t.colors))
	for k := range t.colors {
		out = append(out, k)
	}
	return out
}

// DisplayName falls back to the file stem.
func (t Theme) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Parse decodes a theme document. id is the name the theme was loaded under.
func Parse(id string, data []byte) (Theme, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Theme{}, fmt.Errorf("%w: %s: %v", model.ErrThemeMalformed, id, err)
	}
	if raw == nil {
		return Theme{}, fmt.Errorf("%w: %s: document is not an object", model.ErrThemeMalformed, id)
	}

	t := Theme{ID: id, colors: make(map[string]Color, len(raw))}
	for k, v := range raw {
		switch k {
		case "name", "description":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return Theme{}, fmt.Errorf("%w: %s: %q must be a string", model.ErrThemeMalformed, id, k)
			}
			if k == "name" {
				t.Name = s
			} else {
				t.Description = s
			}
			continue
		}
		c, err := parseColor(v)
		if err != nil {
			return Theme{}, fmt.Errorf("%w: %s: key %q: %v", model.ErrThemeMalformed, id, k, err)
		}
		t.colors[k] = c
	}
	return t, nil
}

func parseColor(v json.RawMessage) (Color, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return Color{Hex: s}, nil
	}

	// a bare list is a vertical gradient
	var list []string
	if err := json.Unmarshal(v, &list); err == nil {
		return Color{Gradient: list, Direction: Vertical}, nil
	}

	var obj struct {
		Type      string    `json:"type"`
		Colors    []string  `json:"colors"`
		Direction Direction `json:"direction"`
	}
	if err := json.Unmarshal(v, &obj); err != nil {
		return Color{}, fmt.Errorf("want string, list or gradient object")
	}
	if obj.Type != "gradient" {
		return Color{}, fmt.Errorf("unsupported color object type %q", obj.Type)
	}
	switch obj.Direction {
	case "":
		obj.Direction = Vertical
	case Vertical, Horizontal:
	default:
		return Color{}, fmt.Errorf("invalid gradient direction %q", obj.Direction)
	}
	return Color{Gradient: obj.Colors, Direction: obj.Direction}, nil
}
