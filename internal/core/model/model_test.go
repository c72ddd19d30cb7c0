package model

import (
	"errors"
	"math"
	"testing"
)

func TestParseNetworkType(t *testing.T) {
	for _, s := range []string{"drive", "ALL", " walk ", "bike"} {
		if _, err := ParseNetworkType(s); err != nil {
			t.Fatalf("ParseNetworkType(%q): %v", s, err)
		}
	}
	_, err := ParseNetworkType("boat")
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig, got %v", err)
	}
}

func TestLocationValid(t *testing.T) {
	cases := []struct {
		loc  Location
		want bool
	}{
		{Location{Lat: 48.8566, Lon: 2.3522}, true},
		{Location{Lat: -90, Lon: 180}, true},
		{Location{Lat: 91, Lon: 0}, false},
		{Location{Lat: 0, Lon: -181}, false},
		{Location{Lat: math.NaN(), Lon: 0}, false},
	}
	for _, c := range cases {
		if got := c.loc.Valid(); got != c.want {
			t.Fatalf("%+v Valid=%v want %v", c.loc, got, c.want)
		}
	}
}

func TestLocationString(t *testing.T) {
	got := Location{Lat: -33.8688, Lon: -151.2093}.String()
	want := "33.8688° S / 151.2093° W"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestConfigErrorFamily(t *testing.T) {
	for _, err := range []error{ErrThemeNotFound, ErrThemeMalformed, ErrPlaceNotFound} {
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("%v should be a config error", err)
		}
	}
	if errors.Is(ErrUpstreamUnavailable, ErrConfig) {
		t.Fatalf("upstream errors are not config errors")
	}
}
