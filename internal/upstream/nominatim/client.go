// Package nominatim geocodes "city, country" strings against a Nominatim server.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/core/observability"
)

type Config struct {
	URL       string
	UserAgent string
	Rate      float64 // requests per second; the public server allows 1
}

type Client struct {
	logger   *slog.Logger
	client   *http.Client
	base     *url.URL
	ua       string
	limiter  *rate.Limiter
	startNow func() time.Time // for tests
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func New(cfg Config, client *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid nominatim url %q", model.ErrConfig, cfg.URL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "city_map_poster"
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.Rate > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return &Client{logger: logger, client: client, base: u, ua: ua, limiter: lim, startNow: time.Now}, nil
}

// Resolve returns the first match for "city, country". No match or out-of-range
// coordinates return model.ErrPlaceNotFound.
func (c *Client) Resolve(ctx context.Context, city, country string) (model.Location, error) {
	q := strings.TrimSpace(city)
	if cn := strings.TrimSpace(country); cn != "" {
		q += ", " + cn
	}
	if q == "" {
		return model.Location{}, fmt.Errorf("%w: empty query", model.ErrPlaceNotFound)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Location{}, fmt.Errorf("%w: nominatim: %w", model.ErrUpstreamUnavailable, err)
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/search"
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.Location{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/json")

	start := c.startNow()
	resp, err := c.client.Do(req)
	if err != nil {
		return model.Location{}, fmt.Errorf("%w: nominatim: %w", model.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	observability.ObserveUpstreamLatency("nominatim", time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return model.Location{}, fmt.Errorf("%w: nominatim status %d: %s",
			model.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var places []place
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&places); err != nil {
		return model.Location{}, fmt.Errorf("%w: decode nominatim response: %w", model.ErrUpstreamUnavailable, err)
	}
	if len(places) == 0 {
		return model.Location{}, fmt.Errorf("%w: %s", model.ErrPlaceNotFound, q)
	}
	p := places[0]
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lon, errLon := strconv.ParseFloat(p.Lon, 64)
	loc := model.Location{Name: p.DisplayName, Lat: lat, Lon: lon}
	if errLat != nil || errLon != nil || !loc.Valid() {
		return model.Location{}, fmt.Errorf("%w: %s: bad coordinates %q,%q", model.ErrPlaceNotFound, q, p.Lat, p.Lon)
	}
	c.logger.InfoContext(ctx, "place resolved", "query", q, "address", p.DisplayName, "lat", lat, "lon", lon)
	return loc, nil
}
