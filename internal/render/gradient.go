package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/city-map-poster/internal/theme"
)

type rgb struct{ r, g, b float64 }

func parseHex(s string) (rgb, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return rgb{}, fmt.Errorf("bad hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("bad hex color %q: %w", s, err)
	}
	return rgb{float64(v >> 16 & 0xFF), float64(v >> 8 & 0xFF), float64(v & 0xFF)}, nil
}

func (c rgb) hex() string {
	clamp := func(f float64) uint8 { return uint8(math.Round(math.Max(0, math.Min(255, f)))) }
	return fmt.Sprintf("#%02X%02X%02X", clamp(c.r), clamp(c.g), clamp(c.b))
}

// Sample evaluates c at pos in [0,1]. Solid colors ignore pos; gradients
// interpolate linearly between evenly spaced stops. Unparsable stops yield def.
func Sample(c theme.Color, pos float64, def string) string {
	if !c.IsGradient() {
		if c.Hex == "" {
			return def
		}
		return c.Hex
	}
	stops := make([]rgb, 0, len(c.Gradient))
	for _, s := range c.Gradient {
		v, err := parseHex(s)
		if err != nil {
			return def
		}
		stops = append(stops, v)
	}
	if len(stops) == 1 {
		return stops[0].hex()
	}
	pos = math.Max(0, math.Min(1, pos))
	seg := pos * float64(len(stops)-1)
	i := int(math.Floor(seg))
	if i >= len(stops)-1 {
		return stops[len(stops)-1].hex()
	}
	t := seg - float64(i)
	a, b := stops[i], stops[i+1]
	return rgb{a.r + (b.r-a.r)*t, a.g + (b.g-a.g)*t, a.b + (b.b-a.b)*t}.hex()
}
