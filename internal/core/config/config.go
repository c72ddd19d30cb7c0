// Package config loads run configuration from defaults, an optional poster.yaml,
// POSTER_* environment variables and bound CLI flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
)

type Config struct {
	Theme       string `mapstructure:"theme"`
	Radius      int    `mapstructure:"radius"`
	NetworkType string `mapstructure:"network_type"`
	ThemeDir    string `mapstructure:"theme_dir"`
	OutputDir   string `mapstructure:"output_dir"`

	Cache     CacheConfig     `mapstructure:"cache"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Overpass  OverpassConfig  `mapstructure:"overpass"`
	Nominatim NominatimConfig `mapstructure:"nominatim"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Events    EventsConfig    `mapstructure:"events"`
}

type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Backend     string        `mapstructure:"backend"`
	Dir         string        `mapstructure:"dir"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	OpTimeout   time.Duration `mapstructure:"op_timeout"`

	RedisPoolSize     int           `mapstructure:"redis_pool_size"`
	RedisMinIdleConns int           `mapstructure:"redis_min_idle_conns"`
	RedisDialTimeout  time.Duration `mapstructure:"redis_dial_timeout"`
	RedisReadTimeout  time.Duration `mapstructure:"redis_read_timeout"`
	RedisWriteTimeout time.Duration `mapstructure:"redis_write_timeout"`
}

type FetchConfig struct {
	Workers int `mapstructure:"workers"`
}

type OverpassConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Rate    float64       `mapstructure:"rate"`
	Burst   int           `mapstructure:"burst"`
}

type NominatimConfig struct {
	URL       string  `mapstructure:"url"`
	UserAgent string  `mapstructure:"user_agent"`
	Rate      float64 `mapstructure:"rate"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	SampleN int    `mapstructure:"sample_n"`
}

type MetricsConfig struct {
	PushURL string `mapstructure:"push_url"`
	Job     string `mapstructure:"job"`
}

type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func (c Config) Network() model.NetworkType { return model.NetworkType(c.NetworkType) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", "feature_based")
	v.SetDefault("radius", 29000)
	v.SetDefault("network_type", string(model.NetworkDrive))
	v.SetDefault("theme_dir", "themes")
	v.SetDefault("output_dir", "posters")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_prefix", "poster:layer:")
	v.SetDefault("cache.op_timeout", 5*time.Second)
	v.SetDefault("cache.redis_pool_size", 8)
	v.SetDefault("cache.redis_min_idle_conns", 1)
	v.SetDefault("cache.redis_dial_timeout", 2*time.Second)
	v.SetDefault("cache.redis_read_timeout", 3*time.Second)
	v.SetDefault("cache.redis_write_timeout", 3*time.Second)

	v.SetDefault("fetch.workers", 2)

	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout", 180*time.Second)
	v.SetDefault("overpass.rate", 1.0)
	v.SetDefault("overpass.burst", 1)

	v.SetDefault("nominatim.url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "city_map_poster")
	v.SetDefault("nominatim.rate", 1.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.sample_n", 0)

	v.SetDefault("metrics.push_url", "")
	v.SetDefault("metrics.job", "city_map_poster")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "poster-layer-events")
}

// NewViper returns a viper instance with defaults and environment binding applied.
// file overrides the poster.yaml search when non-empty.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("poster")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		// a missing poster.yaml is fine; an explicit file must exist
		if !errors.As(err, &nf) && (file != "" || !errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("%w: read config: %w", model.ErrConfig, err)
		}
	}

	// POSTER_CACHE_DIR → cache.dir
	v.SetEnvPrefix("POSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// FromViper decodes and validates.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %w", model.ErrConfig, err)
	}
	cfg.NetworkType = strings.ToLower(strings.TrimSpace(cfg.NetworkType))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is NewViper followed by FromViper.
func Load(file string) (*Config, error) {
	v, err := NewViper(file)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Validate reports every violation at once, wrapped in model.ErrConfig.
func (c *Config) Validate() error {
	var errs []string

	if c.Radius <= 0 {
		errs = append(errs, fmt.Sprintf("radius must be a positive number of meters, got %d", c.Radius))
	}
	if _, err := model.ParseNetworkType(c.NetworkType); err != nil {
		errs = append(errs, fmt.Sprintf("network_type must be one of drive|all|walk|bike, got %q", c.NetworkType))
	}
	if strings.TrimSpace(c.Theme) == "" {
		errs = append(errs, "theme is required")
	}
	if c.ThemeDir == "" {
		errs = append(errs, "theme_dir is required")
	}
	if c.OutputDir == "" {
		errs = append(errs, "output_dir is required")
	}
	switch c.Cache.Backend {
	case "file":
		if c.Cache.Enabled && c.Cache.Dir == "" {
			errs = append(errs, "cache.dir is required for the file backend")
		}
	case "redis":
		if c.Cache.Enabled && c.Cache.RedisAddr == "" {
			errs = append(errs, "cache.redis_addr is required for the redis backend")
		}
		if c.Cache.RedisPoolSize < 0 {
			errs = append(errs, fmt.Sprintf("cache.redis_pool_size must not be negative, got %d", c.Cache.RedisPoolSize))
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be file or redis, got %q", c.Cache.Backend))
	}
	if c.Fetch.Workers < 1 {
		errs = append(errs, fmt.Sprintf("fetch.workers must be at least 1, got %d", c.Fetch.Workers))
	}
	if c.Overpass.URL == "" {
		errs = append(errs, "overpass.url is required")
	}
	if c.Nominatim.URL == "" {
		errs = append(errs, "nominatim.url is required")
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		errs = append(errs, "events.brokers is required when events are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: validation failed:\n  - %s", model.ErrConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}
