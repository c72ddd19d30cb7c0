// Package poster runs one poster generation: theme, geocode, feature resolution,
// layer fetch and render.
package poster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
	"github.com/mohammed-shakir/city-map-poster/internal/fetch"
	"github.com/mohammed-shakir/city-map-poster/internal/logger"
	"github.com/mohammed-shakir/city-map-poster/internal/render"
	"github.com/mohammed-shakir/city-map-poster/internal/theme"
)

type Geocoder interface {
	Resolve(ctx context.Context, city, country string) (model.Location, error)
}

type ThemeLoader interface {
	Load(name string) (theme.Theme, error)
}

type Request struct {
	City         string
	Country      string
	Theme        string
	RadiusMeters int
	Network      model.NetworkType
}

type Result struct {
	Output     string
	Location   model.Location
	Theme      theme.Theme
	Features   feature.RequiredSet
	WorkingSet *fetch.WorkingSet
}

type App struct {
	themes   ThemeLoader
	geocoder Geocoder
	fetcher  *fetch.Orchestrator
	renderer render.Renderer
	logger   *slog.Logger
}

func New(themes ThemeLoader, geocoder Geocoder, orch *fetch.Orchestrator, renderer render.Renderer, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{themes: themes, geocoder: geocoder, fetcher: orch, renderer: renderer, logger: log}
}

func (r Request) validate() error {
	var errs []string
	if strings.TrimSpace(r.City) == "" {
		errs = append(errs, "city is required")
	}
	if strings.TrimSpace(r.Country) == "" {
		errs = append(errs, "country is required")
	}
	if r.RadiusMeters <= 0 {
		errs = append(errs, fmt.Sprintf("radius must be positive, got %d", r.RadiusMeters))
	}
	if _, err := model.ParseNetworkType(string(r.Network)); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", model.ErrConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Generate fails before any network call when the request or theme is invalid.
func (a *App) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if logger.RunID(ctx) == "" {
		ctx = logger.WithRunID(ctx, logger.NewID())
	}

	th, err := a.themes.Load(req.Theme)
	if err != nil {
		return nil, err
	}
	features := feature.Resolve(th)
	a.logger.InfoContext(ctx, "theme loaded",
		"theme", th.ID, "name", th.DisplayName(), "features", features.String())

	loc, err := a.geocoder.Resolve(ctx, req.City, req.Country)
	if err != nil {
		return nil, fmt.Errorf("geocode %s, %s: %w", req.City, req.Country, err)
	}
	a.logger.InfoContext(ctx, "location resolved", "city", req.City, "country", req.Country, "location", loc.String())

	ws, err := a.fetcher.Run(ctx, fetch.Params{
		Location:     loc,
		RadiusMeters: req.RadiusMeters,
		Network:      req.Network,
		Features:     features,
	})
	if err != nil {
		return nil, err
	}
	for _, k := range ws.Omitted() {
		a.logger.WarnContext(ctx, "feature omitted from poster", "kind", string(k), "err", ws.Omissions[k])
	}

	out, err := a.renderer.Render(ctx, render.Poster{
		City:     req.City,
		Country:  req.Country,
		Location: loc,
		Theme:    th,
		Layers:   ws,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	a.logger.InfoContext(ctx, "generation complete", "path", out, "omitted", len(ws.Omissions))

	return &Result{Output: out, Location: loc, Theme: th, Features: features, WorkingSet: ws}, nil
}
