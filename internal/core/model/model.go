// Package model defines core domain types shared across the poster pipeline.
package model

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Location is a geocoded place. Lat/Lon are WGS84 degrees.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

func (l Location) Valid() bool {
	// NaN fails every comparison
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// Point is the location as an orb point (lon, lat).
func (l Location) Point() orb.Point { return orb.Point{l.Lon, l.Lat} }

// String renders the pair the way the poster prints it: 48.8566° N / 2.3522° E
func (l Location) String() string {
	latDir, lonDir := "N", "E"
	lat, lon := l.Lat, l.Lon
	if lat < 0 {
		latDir, lat = "S", -lat
	}
	if lon < 0 {
		lonDir, lon = "W", -lon
	}
	return fmt.Sprintf("%.4f° %s / %.4f° %s", lat, latDir, lon, lonDir)
}

// NetworkType selects which roads make up the street graph.
type NetworkType string

const (
	NetworkDrive NetworkType = "drive"
	NetworkAll   NetworkType = "all"
	NetworkWalk  NetworkType = "walk"
	NetworkBike  NetworkType = "bike"
)

func NetworkTypes() []NetworkType {
	return []NetworkType{NetworkDrive, NetworkAll, NetworkWalk, NetworkBike}
}

func ParseNetworkType(s string) (NetworkType, error) {
	n := NetworkType(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range NetworkTypes() {
		if n == v {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: unknown network type %q (want drive|all|walk|bike)", ErrConfig, s)
}
