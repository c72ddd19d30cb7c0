package nominatim

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
)

func TestResolve_FirstMatch(t *testing.T) {
	var gotQ, gotUA, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path=%s", r.URL.Path)
		}
		gotQ = r.URL.Query().Get("q")
		gotFormat = r.URL.Query().Get("format")
		gotUA = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, `[{"lat":"48.8566","lon":"2.3522","display_name":"Paris, Île-de-France, France"}]`)
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, UserAgent: "poster-test"}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	loc, err := c.Resolve(context.Background(), "Paris", "France")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if loc.Lat != 48.8566 || loc.Lon != 2.3522 || loc.Name == "" {
		t.Fatalf("loc=%+v", loc)
	}
	if gotQ != "Paris, France" || gotUA != "poster-test" || gotFormat != "jsonv2" {
		t.Fatalf("q=%q ua=%q format=%q", gotQ, gotUA, gotFormat)
	}
}

func TestResolve_NoMatchIsPlaceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c, _ := New(Config{URL: srv.URL}, nil, nil)
	_, err := c.Resolve(context.Background(), "Atlantis", "Ocean")
	if !errors.Is(err, model.ErrPlaceNotFound) || !errors.Is(err, model.ErrConfig) {
		t.Fatalf("err=%v want ErrPlaceNotFound", err)
	}
}

func TestResolve_BadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"lat":"123.0","lon":"2.0"}]`)
	}))
	defer srv.Close()

	c, _ := New(Config{URL: srv.URL}, nil, nil)
	if _, err := c.Resolve(context.Background(), "X", "Y"); !errors.Is(err, model.ErrPlaceNotFound) {
		t.Fatalf("err=%v want ErrPlaceNotFound", err)
	}
}

func TestResolve_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := New(Config{URL: srv.URL}, nil, nil)
	_, err := c.Resolve(context.Background(), "Paris", "France")
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Fatalf("err=%v want ErrUpstreamUnavailable", err)
	}
	if errors.Is(err, model.ErrConfig) {
		t.Fatalf("transport failure must not be a config error")
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	c, _ := New(Config{URL: "http://127.0.0.1:1"}, nil, nil)
	if _, err := c.Resolve(context.Background(), " ", ""); !errors.Is(err, model.ErrPlaceNotFound) {
		t.Fatalf("err=%v", err)
	}
}
