package overpass

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
)

var paris = model.Location{Name: "Paris", Lat: 48.8566, Lon: 2.3522}

const streetsBody = `{
  "version": 0.6,
  "elements": [
    {"type":"way","id":10,"nodes":[1,2,3],"tags":{"highway":"primary","name":"Rue de Rivoli"}},
    {"type":"way","id":11,"nodes":[3,4],"tags":{"highway":"residential","oneway":"yes"}},
    {"type":"way","id":12,"nodes":[4,99],"tags":{"highway":"service"}},
    {"type":"node","id":1,"lat":48.8560,"lon":2.3500},
    {"type":"node","id":2,"lat":48.8570,"lon":2.3510},
    {"type":"node","id":3,"lat":48.8580,"lon":2.3520},
    {"type":"node","id":4,"lat":48.8590,"lon":2.3530},
    {"type":"node","id":3,"lat":48.8580,"lon":2.3520}
  ]
}`

const featureBody = `{
  "version": 0.6,
  "elements": [
    {"type":"way","id":20,"nodes":[1,2,3,1],"tags":{"natural":"water","name":"Bassin"}},
    {"type":"node","id":5,"lat":48.8600,"lon":2.3400,"tags":{"amenity":"place_of_worship"}},
    {"type":"node","id":1,"lat":48.8500,"lon":2.3400},
    {"type":"node","id":2,"lat":48.8500,"lon":2.3410},
    {"type":"node","id":3,"lat":48.8510,"lon":2.3410}
  ]
}`

type recorder struct {
	calls atomic.Int32
	query atomic.Value
}

func overpassServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method=%s want POST", r.Method)
		}
		b, _ := io.ReadAll(r.Body)
		v, _ := url.ParseQuery(string(b))
		rec.query.Store(v.Get("data"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := New(Config{URL: endpoint, Timeout: 25 * time.Second}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestFetchStreets_BuildsGraph(t *testing.T) {
	srv, rec := overpassServer(t, http.StatusOK, streetsBody)
	c := newClient(t, srv.URL)

	l, err := c.FetchStreets(context.Background(), paris, 1000, model.NetworkDrive)
	if err != nil {
		t.Fatalf("FetchStreets: %v", err)
	}
	if l.Kind != feature.Streets || l.Empty || l.Graph == nil {
		t.Fatalf("layer=%+v", l)
	}
	// 1-2, 2-3, 3-4; the service way references a node that was not returned
	if got := len(l.Graph.Edges); got != 3 {
		t.Fatalf("edges=%d want 3", got)
	}
	if got := len(l.Graph.Nodes); got != 4 {
		t.Fatalf("nodes=%d want 4", got)
	}
	e := l.Graph.Edges[2]
	if e.Highway != "residential" || !e.Oneway || e.WayID != 11 {
		t.Fatalf("edge=%+v", e)
	}
	if e.Length < 100 || e.Length > 200 {
		t.Fatalf("edge length=%v want ~133m", e.Length)
	}

	q := rec.query.Load().(string)
	for _, want := range []string{"[out:json][timeout:25];", `way["highway"]`, `["motorcar"!~"no"]`, "out skel qt;"} {
		if !strings.Contains(q, want) {
			t.Fatalf("query %q missing %q", q, want)
		}
	}
}

func TestFetchStreets_NoWaysIsEmptyResult(t *testing.T) {
	srv, _ := overpassServer(t, http.StatusOK, `{"elements":[]}`)
	c := newClient(t, srv.URL)
	_, err := c.FetchStreets(context.Background(), paris, 1000, model.NetworkWalk)
	if !errors.Is(err, model.ErrEmptyResult) {
		t.Fatalf("err=%v want ErrEmptyResult", err)
	}
}

func TestFetchFeature_ConvertsAndFilters(t *testing.T) {
	srv, rec := overpassServer(t, http.StatusOK, featureBody)
	c := newClient(t, srv.URL)

	l, err := c.FetchFeature(context.Background(), paris, 1000, feature.Water)
	if err != nil {
		t.Fatalf("FetchFeature: %v", err)
	}
	// the worship node does not carry a water tag
	if l.Size() != 1 {
		t.Fatalf("features=%d want 1", l.Size())
	}
	f := l.Features.Features[0]
	if _, ok := f.Geometry.(orb.Polygon); !ok {
		t.Fatalf("geometry=%T want Polygon", f.Geometry)
	}
	if f.Properties["natural"] != "water" || f.Properties["name"] != "Bassin" {
		t.Fatalf("properties=%v", f.Properties)
	}

	q := rec.query.Load().(string)
	if !strings.Contains(q, `nwr["natural"="water"]`) || !strings.Contains(q, `nwr["waterway"="riverbank"]`) {
		t.Fatalf("query=%q", q)
	}
}

func TestFetchFeature_NoMatchesIsEmptyResult(t *testing.T) {
	srv, _ := overpassServer(t, http.StatusOK, featureBody)
	c := newClient(t, srv.URL)
	_, err := c.FetchFeature(context.Background(), paris, 1000, feature.Airport)
	if !errors.Is(err, model.ErrEmptyResult) {
		t.Fatalf("err=%v want ErrEmptyResult", err)
	}
}

func TestUpstreamFailuresAreUnavailable(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"rate limited":   {http.StatusTooManyRequests, "slow down"},
		"gateway":        {http.StatusGatewayTimeout, ""},
		"bad request":    {http.StatusBadRequest, "parse error"},
		"garbage":        {http.StatusOK, "<html>oops</html>"},
		"runtime remark": {http.StatusOK, `{"elements":[],"remark":"runtime error: Query timed out"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := overpassServer(t, tc.status, tc.body)
			c := newClient(t, srv.URL)
			_, err := c.FetchFeature(context.Background(), paris, 1000, feature.Parks)
			if !errors.Is(err, model.ErrUpstreamUnavailable) {
				t.Fatalf("err=%v want ErrUpstreamUnavailable", err)
			}
		})
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv, _ := overpassServer(t, http.StatusOK, "{}")
	endpoint := srv.URL
	srv.Close()

	c := newClient(t, endpoint)
	_, err := c.FetchStreets(context.Background(), paris, 1000, model.NetworkDrive)
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Fatalf("err=%v want ErrUpstreamUnavailable", err)
	}
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	srv, rec := overpassServer(t, http.StatusOK, featureBody)
	c, err := New(Config{URL: srv.URL, Rate: 20, Burst: 1}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start := time.Now()
	for range 3 {
		_, _ = c.FetchFeature(context.Background(), paris, 500, feature.Water)
	}
	if rec.calls.Load() != 3 {
		t.Fatalf("calls=%d", rec.calls.Load())
	}
	if el := time.Since(start); el < 90*time.Millisecond {
		t.Fatalf("3 calls at 20/s with burst 1 took %v; limiter not applied", el)
	}
}

func TestNew_RejectsBadURL(t *testing.T) {
	if _, err := New(Config{URL: "not a url"}, nil, nil); !errors.Is(err, model.ErrConfig) {
		t.Fatalf("err=%v want ErrConfig", err)
	}
}
