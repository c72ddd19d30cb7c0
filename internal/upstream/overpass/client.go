// Package overpass fetches street graphs and tagged features from the Overpass API.
package overpass

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm/osmgeojson"
	"golang.org/x/time/rate"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/core/observability"
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
	"github.com/mohammed-shakir/city-map-poster/internal/layer"
)

const maxBody = 512 << 20

type Config struct {
	URL     string
	Timeout time.Duration
	Rate    float64 // requests per second; <= 0 disables limiting
	Burst   int
}

type Client struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
	timeout  time.Duration
	limiter  *rate.Limiter
	startNow func() time.Time // for tests
}

func New(cfg Config, client *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid overpass url %q", model.ErrConfig, cfg.URL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}
	return &Client{
		logger:   logger,
		client:   client,
		endpoint: u.String(),
		timeout:  cfg.Timeout,
		limiter:  lim,
		startNow: time.Now,
	}, nil
}

// FetchStreets returns the street graph of the network type inside the radius bbox.
// A bbox without drivable ways returns model.ErrEmptyResult.
func (c *Client) FetchStreets(ctx context.Context, loc model.Location, radiusMeters int, network model.NetworkType) (layer.Layer, error) {
	q, err := StreetsQuery(BBox(loc, radiusMeters), network, c.timeoutSeconds())
	if err != nil {
		return layer.Layer{}, err
	}
	resp, err := c.do(ctx, feature.Streets, q)
	if err != nil {
		return layer.Layer{}, err
	}
	g := buildGraph(resp)
	if len(g.Edges) == 0 {
		return layer.Layer{}, fmt.Errorf("streets (%s): %w", network, model.ErrEmptyResult)
	}
	c.logger.DebugContext(ctx, "street graph built", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return layer.NewGraphLayer(g), nil
}

// FetchFeature returns the geometries tagged for kind inside the radius bbox.
func (c *Client) FetchFeature(ctx context.Context, loc model.Location, radiusMeters int, kind feature.Kind) (layer.Layer, error) {
	rule, ok := feature.RuleFor(kind)
	if !ok {
		return layer.Layer{}, fmt.Errorf("fetch %s: no tag rule", kind)
	}
	q, err := FeatureQuery(BBox(loc, radiusMeters), kind, c.timeoutSeconds())
	if err != nil {
		return layer.Layer{}, err
	}
	resp, err := c.do(ctx, kind, q)
	if err != nil {
		return layer.Layer{}, err
	}

	fc, err := osmgeojson.Convert(resp.toOSM(), osmgeojson.NoMeta(true), osmgeojson.NoRelationMembership(true))
	if err != nil {
		return layer.Layer{}, fmt.Errorf("%w: convert %s: %w", model.ErrUpstreamUnavailable, kind, err)
	}
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		tags := featureTags(f)
		if !matches(rule, tags) {
			continue
		}
		nf := geojson.NewFeature(f.Geometry)
		nf.ID = f.ID
		for k, v := range tags {
			nf.Properties[k] = v
		}
		out.Append(nf)
	}
	if len(out.Features) == 0 {
		return layer.Layer{}, fmt.Errorf("%s: %w", kind, model.ErrEmptyResult)
	}
	return layer.NewFeatureLayer(kind, out), nil
}

func featureTags(f *geojson.Feature) map[string]string {
	out := map[string]string{}
	switch t := f.Properties["tags"].(type) {
	case map[string]string:
		for k, v := range t {
			out[k] = v
		}
	case map[string]any:
		for k, v := range t {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

func (c *Client) timeoutSeconds() int {
	if c.timeout <= 0 {
		return 180
	}
	return int(c.timeout / time.Second)
}

func (c *Client) do(ctx context.Context, kind feature.Kind, query string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: overpass %s: %w", model.ErrUpstreamUnavailable, kind, err)
	}

	form := url.Values{}
	form.Set("data", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := c.startNow()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: overpass %s: %w", model.ErrUpstreamUnavailable, kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	dur := time.Since(start)
	observability.ObserveUpstreamLatency("overpass", dur.Seconds())
	c.logger.DebugContext(ctx, "overpass call done",
		"kind", string(kind),
		"status", resp.StatusCode,
		"duration", dur.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("%w: overpass %s: status %d: %s",
			model.ErrUpstreamUnavailable, kind, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: overpass %s: read body: %w", model.ErrUpstreamUnavailable, kind, err)
	}
	r, err := decodeResponse(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrUpstreamUnavailable, kind, err)
	}
	return r, nil
}
