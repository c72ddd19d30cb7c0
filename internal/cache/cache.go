// Package cache defines the blob storage the layer cache sits on and picks a backend.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/city-map-poster/internal/cache/filestore"
	"github.com/mohammed-shakir/city-map-poster/internal/cache/redisstore"
	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
)

// BlobStore maps keys to opaque blobs. Get returns model.ErrCacheMiss for absent keys.
// Entries never expire.
type BlobStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, val []byte) error
	Clear(ctx context.Context) error
	Close() error
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	Backend     string
	Dir         string
	RedisAddr   string
	RedisPrefix string
	OpTimeout   time.Duration

	// Redis client tuning; zero keeps the client default.
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration
}

func (c Config) redisOptions() []redisstore.Option {
	var opts []redisstore.Option
	if c.RedisPoolSize > 0 {
		opts = append(opts, redisstore.WithPoolSize(c.RedisPoolSize))
	}
	if c.RedisMinIdleConns > 0 {
		opts = append(opts, redisstore.WithMinIdleConns(c.RedisMinIdleConns))
	}
	if c.RedisDialTimeout > 0 {
		opts = append(opts, redisstore.WithDialTimeout(c.RedisDialTimeout))
	}
	if c.RedisReadTimeout > 0 {
		opts = append(opts, redisstore.WithReadTimeout(c.RedisReadTimeout))
	}
	if c.RedisWriteTimeout > 0 {
		opts = append(opts, redisstore.WithWriteTimeout(c.RedisWriteTimeout))
	}
	return opts
}

// New opens the configured backend. The redis backend pings on open.
func New(ctx context.Context, cfg Config, log *slog.Logger) (BlobStore, error) {
	if log == nil {
		log = slog.Default()
	}
	switch cfg.Backend {
	case BackendFile, "":
		log.Info("using file layer cache", "dir", cfg.Dir)
		return filestore.New(cfg.Dir), nil
	case BackendRedis:
		log.Info("using redis layer cache", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix, "pool_size", cfg.RedisPoolSize)
		rc, err := redisstore.New(ctx, cfg.RedisAddr, cfg.redisOptions()...)
		if err != nil {
			return nil, fmt.Errorf("open redis layer cache: %w", err)
		}
		return redisstore.NewBlobStore(rc, cfg.RedisPrefix, cfg.OpTimeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q (supported: file, redis)", model.ErrConfig, cfg.Backend)
	}
}
