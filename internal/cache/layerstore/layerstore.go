// Package layerstore persists layers by cache key on top of a blob store.
package layerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohammed-shakir/city-map-poster/internal/cache"
	"github.com/mohammed-shakir/city-map-poster/internal/cache/keys"
	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/core/observability"
	"github.com/mohammed-shakir/city-map-poster/internal/layer"
)

type Store struct {
	blobs cache.BlobStore
}

func New(blobs cache.BlobStore) *Store {
	return &Store{blobs: blobs}
}

// Has reports whether an entry exists for key. It does not validate the entry.
func (s *Store) Has(ctx context.Context, key keys.Key) (bool, error) {
	start := time.Now()
	ok, err := s.blobs.Exists(ctx, key.String())
	res := "miss"
	switch {
	case err != nil:
		res = "error"
	case ok:
		res = "hit"
	}
	observability.ObserveCacheResult("has", res, time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("check cache %s: %w", key, err)
	}
	return ok, nil
}

// Read returns model.ErrCacheMiss when no entry exists and an error wrapping
// model.ErrCacheCorrupt when the entry cannot be decoded.
func (s *Store) Read(ctx context.Context, key keys.Key) (layer.Layer, error) {
	start := time.Now()
	b, err := s.blobs.Get(ctx, key.String())
	if errors.Is(err, model.ErrCacheMiss) {
		observability.ObserveCacheResult("read", "miss", time.Since(start).Seconds())
		return layer.Layer{}, model.ErrCacheMiss
	}
	if err != nil {
		observability.ObserveCacheResult("read", "error", time.Since(start).Seconds())
		return layer.Layer{}, fmt.Errorf("read cache %s: %w", key, err)
	}
	l, err := layer.Decode(key.Kind, b)
	if err != nil {
		observability.ObserveCacheResult("read", "corrupt", time.Since(start).Seconds())
		return layer.Layer{}, fmt.Errorf("read cache %s: %w", key, err)
	}
	observability.ObserveCacheResult("read", "ok", time.Since(start).Seconds())
	return l, nil
}

// Write stores l under key, replacing any previous entry. Failures wrap model.ErrCacheWrite.
func (s *Store) Write(ctx context.Context, key keys.Key, l layer.Layer) error {
	start := time.Now()
	if l.Kind != key.Kind {
		err := fmt.Errorf("%w: layer kind %s does not match key %s", model.ErrCacheWrite, l.Kind, key)
		observability.ObserveCacheOp("write", err, time.Since(start).Seconds())
		return err
	}
	b, err := layer.Encode(l)
	if err != nil {
		observability.ObserveCacheOp("write", err, time.Since(start).Seconds())
		return fmt.Errorf("%w: %s: %w", model.ErrCacheWrite, key, err)
	}
	err = s.blobs.Put(ctx, key.String(), b)
	observability.ObserveCacheOp("write", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrCacheWrite, key, err)
	}
	return nil
}

// Clear drops every entry in the underlying store.
func (s *Store) Clear(ctx context.Context) error {
	start := time.Now()
	err := s.blobs.Clear(ctx)
	observability.ObserveCacheOp("clear", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("clear layer cache: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.blobs.Close() }
