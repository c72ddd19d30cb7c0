// Package fetch resolves every required feature kind from the layer cache or upstream.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohammed-shakir/city-map-poster/internal/cache/keys"
	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/core/observability"
	"github.com/mohammed-shakir/city-map-poster/internal/events"
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
	"github.com/mohammed-shakir/city-map-poster/internal/layer"
	"github.com/mohammed-shakir/city-map-poster/internal/logger"
)

type Fetcher interface {
	FetchStreets(ctx context.Context, loc model.Location, radiusMeters int, network model.NetworkType) (layer.Layer, error)
	FetchFeature(ctx context.Context, loc model.Location, radiusMeters int, kind feature.Kind) (layer.Layer, error)
}

type Store interface {
	Has(ctx context.Context, key keys.Key) (bool, error)
	Read(ctx context.Context, key keys.Key) (layer.Layer, error)
	Write(ctx context.Context, key keys.Key, l layer.Layer) error
}

type Options struct {
	// CacheEnabled false bypasses the store: every kind is fetched and nothing is written.
	CacheEnabled bool
	Workers      int
	Logger       *slog.Logger
	Events       events.Publisher
}

type Params struct {
	Location     model.Location
	RadiusMeters int
	Network      model.NetworkType
	Features     feature.RequiredSet
}

type Orchestrator struct {
	fetcher  Fetcher
	store    Store
	cacheOn  bool
	workers  int
	logger   *slog.Logger
	events   events.Publisher
	startNow func() time.Time // for tests
}

// New builds an orchestrator. store may be nil, which disables caching.
func New(fetcher Fetcher, store Store, opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = events.Noop{}
	}
	return &Orchestrator{
		fetcher:  fetcher,
		store:    store,
		cacheOn:  opts.CacheEnabled && store != nil,
		workers:  opts.Workers,
		logger:   opts.Logger,
		events:   opts.Events,
		startNow: time.Now,
	}
}

type result struct {
	kind        feature.Kind
	state       State
	source      Source
	layer       layer.Layer
	err         error
	cacheRead   bool
	fetched     bool
	wrote       bool
	writeFailed bool
}

// Run resolves every kind in p.Features. A streets failure aborts the run with
// model.ErrStreetsUnavailable; any other failure is recorded in WorkingSet.Omissions.
func (o *Orchestrator) Run(ctx context.Context, p Params) (*WorkingSet, error) {
	if !p.Location.Valid() {
		return nil, fmt.Errorf("%w: invalid location %v", model.ErrConfig, p.Location)
	}
	if p.RadiusMeters <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %d", model.ErrConfig, p.RadiusMeters)
	}
	if _, err := model.ParseNetworkType(string(p.Network)); err != nil {
		return nil, err
	}
	features := feature.NewRequiredSet(p.Features...)

	ws := newWorkingSet(features)
	start := o.startNow()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	var mu sync.Mutex
	for _, k := range features {
		g.Go(func() error {
			r := o.resolve(gctx, p, k)
			mu.Lock()
			ws.record(r)
			mu.Unlock()
			if k == feature.Streets && r.state == StateFailed {
				return fmt.Errorf("%w: %w", model.ErrStreetsUnavailable, r.err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.logger.ErrorContext(ctx, "run aborted", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}

	o.logger.InfoContext(ctx, "layers resolved",
		"features", len(features),
		"fetches", ws.Stats.Fetches,
		"cache_reads", ws.Stats.CacheReads,
		"cache_writes", ws.Stats.CacheWrites,
		"write_failures", ws.Stats.WriteFailures,
		"omissions", len(ws.Omissions),
		"duration", time.Since(start).String())
	return ws, nil
}

func (o *Orchestrator) resolve(ctx context.Context, p Params, k feature.Kind) result {
	ctx = logger.WithKind(ctx, string(k))
	key := keys.Build(p.Location, p.RadiusMeters, p.Network, k)
	start := o.startNow()
	r := result{kind: k}

	if o.cacheOn {
		if l, ok := o.lookup(ctx, key); ok {
			r.state, r.source, r.layer, r.cacheRead = StateResolved, SourceCache, l, true
			if l.Empty {
				r.state = StateResolvedEmpty
			}
			observability.ObserveLayer(string(k), observability.OutcomeHit)
			o.emit(ctx, k, r.state, r.source, key, start, nil)
			return r
		}
	}

	o.emit(ctx, k, StateFetching, SourceNone, key, start, nil)
	l, err := o.fetch(ctx, p, k)
	r.fetched = true
	switch {
	case err == nil:
		r.state, r.source, r.layer = StateResolved, SourceUpstream, l
		observability.ObserveLayer(string(k), observability.OutcomeFetched)
	case errors.Is(err, model.ErrEmptyResult) && k != feature.Streets:
		r.state, r.source, r.layer = StateResolvedEmpty, SourceUpstream, layer.NewEmpty(k)
		observability.ObserveLayer(string(k), observability.OutcomeEmpty)
		o.logger.InfoContext(ctx, "no matching geometry in radius")
	default:
		r.state, r.err = StateFailed, err
		observability.ObserveLayer(string(k), observability.OutcomeFailed)
		o.logger.WarnContext(ctx, "fetch failed", "err", err)
		o.emit(ctx, k, r.state, SourceNone, key, start, err)
		return r
	}

	if o.cacheOn {
		if err := o.store.Write(ctx, key, r.layer); err != nil {
			r.writeFailed = true
			o.logger.WarnContext(ctx, "cache write failed; continuing without persisting", "err", err)
		} else {
			r.wrote = true
		}
	}
	o.emit(ctx, k, r.state, r.source, key, start, nil)
	return r
}

// lookup returns a usable cached layer. Errors and corrupt entries count as misses.
func (o *Orchestrator) lookup(ctx context.Context, key keys.Key) (layer.Layer, bool) {
	ok, err := o.store.Has(ctx, key)
	if err != nil {
		o.logger.WarnContext(logger.WithCache(ctx, "error"), "cache check failed; fetching", "err", err)
		return layer.Layer{}, false
	}
	if !ok {
		o.logger.DebugContext(logger.WithCache(ctx, "miss"), "cache miss")
		return layer.Layer{}, false
	}
	l, err := o.store.Read(ctx, key)
	if err == nil && key.Kind == feature.Streets && l.Empty {
		err = fmt.Errorf("%w: cached street network is empty", model.ErrCacheCorrupt)
	}
	if err != nil {
		if errors.Is(err, model.ErrCacheCorrupt) {
			observability.ObserveLayer(string(key.Kind), observability.OutcomeCorrupt)
			o.logger.WarnContext(logger.WithCache(ctx, "corrupt"), "cache entry unreadable; fetching", "err", err)
		} else {
			o.logger.WarnContext(logger.WithCache(ctx, "error"), "cache read failed; fetching", "err", err)
		}
		return layer.Layer{}, false
	}
	o.logger.DebugContext(logger.WithCache(ctx, "hit"), "cache hit", "size", l.Size())
	return l, true
}

func (o *Orchestrator) fetch(ctx context.Context, p Params, k feature.Kind) (layer.Layer, error) {
	if k.IsGraph() {
		return o.fetcher.FetchStreets(ctx, p.Location, p.RadiusMeters, p.Network)
	}
	return o.fetcher.FetchFeature(ctx, p.Location, p.RadiusMeters, k)
}

func (o *Orchestrator) emit(ctx context.Context, k feature.Kind, s State, src Source, key keys.Key, start time.Time, err error) {
	ev := events.LayerEvent{
		RunID:    logger.RunID(ctx),
		Kind:     string(k),
		State:    string(s),
		Source:   string(src),
		Key:      key.String(),
		Duration: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	o.events.Publish(ev)
}
