package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
)

const noirTheme = `{"name":"Noir","description":"White on black","bg":"#000000","text":"#FFFFFF","water":"#1A1A1A","road_default":"#909090"}`

const streetsBody = `{"elements":[
  {"type":"way","id":10,"nodes":[1,2],"tags":{"highway":"primary"}},
  {"type":"node","id":1,"lat":48.8560,"lon":2.3500},
  {"type":"node","id":2,"lat":48.8570,"lon":2.3510}
]}`

// workspace chdirs into a fresh directory holding a themes/ dir with noir.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "themes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "themes", "noir.json"), []byte(noirTheme), 0o644))
	t.Setenv("POSTER_LOG_CONSOLE", "false")
	t.Setenv("POSTER_LOG_LEVEL", "error")
	return dir
}

type upstreams struct {
	geocodes atomic.Int32
	queries  atomic.Int32
}

func fakeUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/search" {
			u.geocodes.Add(1)
			fmt.Fprint(w, `[{"lat":"48.8566","lon":"2.3522","display_name":"Paris, France"}]`)
			return
		}
		u.queries.Add(1)
		if strings.Contains(r.FormValue("data"), `["highway"]["area"!~"yes"]`) {
			fmt.Fprint(w, streetsBody)
			return
		}
		fmt.Fprint(w, `{"elements":[]}`)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("POSTER_NOMINATIM_URL", srv.URL)
	t.Setenv("POSTER_NOMINATIM_RATE", "0")
	t.Setenv("POSTER_OVERPASS_URL", srv.URL+"/api/interpreter")
	t.Setenv("POSTER_OVERPASS_RATE", "0")
	return u
}

func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(fmt.Errorf("wrap: %w", model.ErrThemeNotFound)))
	assert.Equal(t, 2, exitCode(model.ErrPlaceNotFound))
	assert.Equal(t, 1, exitCode(model.ErrStreetsUnavailable))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestVersionCmd(t *testing.T) {
	orig := version
	version = "test-1.0.0"
	defer func() { version = orig }()

	code, out, _ := execute("version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "poster version test-1.0.0")
}

func TestBareInvocationPrintsExamples(t *testing.T) {
	workspace(t)
	code, out, _ := execute()
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "City Map Poster Generator")
	assert.Contains(t, out, "Distance guide:")
}

func TestThemesCmd(t *testing.T) {
	workspace(t)
	code, out, _ := execute("themes")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Available Themes:")
	assert.Contains(t, out, "noir")
	assert.Contains(t, out, "White on black")
}

func TestGenerate_MissingCityIsConfigError(t *testing.T) {
	workspace(t)
	code, _, stderr := execute("generate", "-C", "France")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "--city and --country are required")
}

func TestGenerate_InvalidNetworkIsConfigError(t *testing.T) {
	workspace(t)
	code, _, stderr := execute("generate", "-c", "Paris", "-C", "France", "-n", "boat")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "network_type")
}

func TestGenerate_UnknownThemeListsAvailable(t *testing.T) {
	workspace(t)
	u := fakeUpstreams(t)

	code, _, stderr := execute("generate", "-c", "Paris", "-C", "France", "-t", "missing")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Available themes:")
	assert.Contains(t, stderr, "noir")
	assert.Zero(t, u.geocodes.Load(), "no geocode for an unknown theme")
}

func TestGenerate_ColdThenWarmCache(t *testing.T) {
	dir := workspace(t)
	u := fakeUpstreams(t)
	args := []string{"generate", "-c", "Paris", "-C", "France", "-t", "noir", "-d", "5000"}

	code, out, stderr := execute(args...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Poster saved as")
	assert.Contains(t, out, "(0 cached, 2 downloaded, 0 omitted)")
	assert.EqualValues(t, 2, u.queries.Load())

	posters, err := filepath.Glob(filepath.Join(dir, "posters", "paris_noir_*.geojson"))
	require.NoError(t, err)
	assert.Len(t, posters, 1)

	code, out, stderr = execute(args...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "(2 cached, 0 downloaded, 0 omitted)")
	assert.EqualValues(t, 2, u.queries.Load(), "warm run must not query overpass")

	code, out, stderr = execute(append(args, "--no-cache=false")...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "(2 cached, 0 downloaded, 0 omitted)")
	assert.EqualValues(t, 2, u.queries.Load(), "--no-cache=false keeps the cache on")

	code, _, stderr = execute(append(args, "--no-cache")...)
	require.Equal(t, 0, code, stderr)
	assert.EqualValues(t, 4, u.queries.Load())
}

func TestCacheClear(t *testing.T) {
	dir := workspace(t)
	fakeUpstreams(t)

	code, _, stderr := execute("generate", "-c", "Paris", "-C", "France", "-t", "noir")
	require.Equal(t, 0, code, stderr)
	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	code, out, stderr := execute("cache", "clear")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Cleared file layer cache")
	_, err = os.Stat(filepath.Join(dir, "cache"))
	assert.True(t, os.IsNotExist(err))
}
