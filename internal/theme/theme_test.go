package theme

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
)

func writeTheme(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
}

func TestLoad_SolidAndGradientColors(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "ocean", `{
		"name": "Ocean",
		"description": "Deep blues",
		"bg": "#0B1D2A",
		"water": ["#0A2A43", "#1B4F72"],
		"parks": {"type": "gradient", "colors": ["#103020", "#205040"], "direction": "horizontal"},
		"beach": ""
	}`)

	th, err := NewStore(dir).Load("ocean")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.DisplayName() != "Ocean" || th.Description != "Deep blues" {
		t.Fatalf("metadata: %+v", th)
	}
	if c, _ := th.Color("bg"); c.Hex != "#0B1D2A" || c.IsGradient() {
		t.Fatalf("bg: %+v", c)
	}
	water, _ := th.Color("water")
	if !water.IsGradient() || water.Direction != Vertical || len(water.Gradient) != 2 {
		t.Fatalf("water: %+v", water)
	}
	parks, _ := th.Color("parks")
	if parks.Direction != Horizontal {
		t.Fatalf("parks direction=%q", parks.Direction)
	}
	if th.Has("beach") {
		t.Fatalf("empty beach value must not count as present")
	}
	if _, ok := th.Color("name"); ok {
		t.Fatalf("metadata keys must not be colors")
	}
	if got := th.ColorOr("water", "#000"); got != "#0A2A43" {
		t.Fatalf("ColorOr gradient=%q", got)
	}
	if got := th.ColorOr("railway", "#A9A9A9"); got != "#A9A9A9" {
		t.Fatalf("ColorOr fallback=%q", got)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, name := range []string{"missing", "", "../etc/passwd", ".hidden"} {
		_, err := s.Load(name)
		if !errors.Is(err, model.ErrThemeNotFound) {
			t.Fatalf("Load(%q) err=%v want ErrThemeNotFound", name, err)
		}
		if !errors.Is(err, model.ErrConfig) {
			t.Fatalf("Load(%q) should be a config error", name)
		}
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"notjson":   `{"bg": `,
		"array":     `["#fff"]`,
		"null":      `null`,
		"number":    `{"water": 12}`,
		"badobject": `{"water": {"type": "pattern"}}`,
		"baddir":    `{"water": {"type": "gradient", "colors": ["#fff"], "direction": "diagonal"}}`,
		"badname":   `{"name": 3}`,
	}
	for name, body := range cases {
		writeTheme(t, dir, name, body)
	}
	s := NewStore(dir)
	for name := range cases {
		_, err := s.Load(name)
		if !errors.Is(err, model.ErrThemeMalformed) {
			t.Fatalf("Load(%q) err=%v want ErrThemeMalformed", name, err)
		}
	}
}

func TestList_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "noir", `{}`)
	writeTheme(t, dir, "blueprint", `{}`)
	writeTheme(t, dir, "warm_beige", `{}`)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := NewStore(dir).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"blueprint", "noir", "warm_beige"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List=%v want %v", got, want)
	}
}

func TestList_MissingDir(t *testing.T) {
	got, err := NewStore(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestDescribe_FallsBackToStem(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "noir", `{"name":"Noir","description":"Black and white"}`)
	writeTheme(t, dir, "broken", `{`)

	got, err := NewStore(dir).Describe()
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	want := []Summary{
		{ID: "broken", Name: "broken"},
		{ID: "noir", Name: "Noir", Description: "Black and white"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Describe=%+v want %+v", got, want)
	}
}

func TestShippedThemesLoad(t *testing.T) {
	s := NewStore(filepath.Join("..", "..", "themes"))
	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("no shipped themes found")
	}
	for _, n := range names {
		if _, err := s.Load(n); err != nil {
			t.Fatalf("shipped theme %q: %v", n, err)
		}
	}
}
