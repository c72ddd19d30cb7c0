package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/city-map-poster/internal/app/poster"
	"github.com/mohammed-shakir/city-map-poster/internal/cache"
	"github.com/mohammed-shakir/city-map-poster/internal/cache/layerstore"
	"github.com/mohammed-shakir/city-map-poster/internal/core/config"
	"github.com/mohammed-shakir/city-map-poster/internal/core/httpclient"
	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/core/observability"
	"github.com/mohammed-shakir/city-map-poster/internal/events"
	"github.com/mohammed-shakir/city-map-poster/internal/fetch"
	"github.com/mohammed-shakir/city-map-poster/internal/metrics"
	"github.com/mohammed-shakir/city-map-poster/internal/render"
	"github.com/mohammed-shakir/city-map-poster/internal/theme"
	"github.com/mohammed-shakir/city-map-poster/internal/upstream/nominatim"
	"github.com/mohammed-shakir/city-map-poster/internal/upstream/overpass"
)

const eventQueue = 256

// runtime is the wired pipeline for one generate invocation.
type runtime struct {
	app     *poster.App
	metrics *metrics.Provider
	closers []io.Closer
}

func (r *runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger, progress io.Writer) (*runtime, error) {
	rt := &runtime{}

	rt.metrics = metrics.Init(metrics.Config{
		PushURL: cfg.Metrics.PushURL,
		Job:     cfg.Metrics.Job,
		Build:   metrics.BuildInfo{Version: version, Revision: revision, BuildDate: buildDate},
	})
	if err := observability.Register(rt.metrics.Registerer()); err != nil {
		return nil, fmt.Errorf("register collectors: %w", err)
	}

	var store fetch.Store
	if cfg.Cache.Enabled {
		blobs, err := cache.New(ctx, cacheConfig(cfg), log)
		switch {
		case errors.Is(err, model.ErrConfig):
			return nil, err
		case err != nil:
			// an unreachable cache only costs performance
			log.Warn("layer cache unavailable, fetching everything upstream", "backend", cfg.Cache.Backend, "err", err)
		default:
			ls := layerstore.New(blobs)
			rt.closers = append(rt.closers, ls)
			store = ls
		}
	} else {
		log.Info("layer cache disabled")
	}

	pub := events.Multi{newProgress(progress)}
	if cfg.Events.Enabled {
		k, err := events.DialKafka(cfg.Events.Brokers, cfg.Events.Topic, eventQueue, log)
		if err != nil {
			// events are best effort
			log.Warn("layer events disabled", "brokers", cfg.Events.Brokers, "err", err)
		} else {
			pub = append(pub, k)
		}
	}
	rt.closers = append(rt.closers, pub)

	hc := httpclient.NewOutbound(cfg.Overpass.Timeout+30*time.Second, cfg.Nominatim.UserAgent)
	op, err := overpass.New(overpass.Config{
		URL:     cfg.Overpass.URL,
		Timeout: cfg.Overpass.Timeout,
		Rate:    cfg.Overpass.Rate,
		Burst:   cfg.Overpass.Burst,
	}, hc, log)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	geo, err := nominatim.New(nominatim.Config{
		URL:       cfg.Nominatim.URL,
		UserAgent: cfg.Nominatim.UserAgent,
		Rate:      cfg.Nominatim.Rate,
	}, hc, log)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	orch := fetch.New(op, store, fetch.Options{
		CacheEnabled: cfg.Cache.Enabled,
		Workers:      cfg.Fetch.Workers,
		Logger:       log,
		Events:       pub,
	})
	rt.app = poster.New(theme.NewStore(cfg.ThemeDir), geo, orch, render.NewGeoJSON(cfg.OutputDir, log), log)
	return rt, nil
}

func cacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		Backend:     cfg.Cache.Backend,
		Dir:         cfg.Cache.Dir,
		RedisAddr:   cfg.Cache.RedisAddr,
		RedisPrefix: cfg.Cache.RedisPrefix,
		OpTimeout:   cfg.Cache.OpTimeout,

		RedisPoolSize:     cfg.Cache.RedisPoolSize,
		RedisMinIdleConns: cfg.Cache.RedisMinIdleConns,
		RedisDialTimeout:  cfg.Cache.RedisDialTimeout,
		RedisReadTimeout:  cfg.Cache.RedisReadTimeout,
		RedisWriteTimeout: cfg.Cache.RedisWriteTimeout,
	}
}

// pushMetrics is best effort: a failed push is logged and the run still succeeds.
func (r *runtime) pushMetrics(ctx context.Context, log *slog.Logger) {
	if !r.metrics.PushEnabled() {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.metrics.Push(pctx); err != nil {
		log.Warn("metrics push failed", "err", err)
	}
}
