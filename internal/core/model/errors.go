package model

import (
	"errors"
	"fmt"
)

// ErrConfig is the root of every error that must be reported before any fetch starts.
var ErrConfig = errors.New("config error")

var (
	ErrThemeNotFound  = fmt.Errorf("%w: theme not found", ErrConfig)
	ErrThemeMalformed = fmt.Errorf("%w: theme malformed", ErrConfig)
	ErrPlaceNotFound  = fmt.Errorf("%w: place not found", ErrConfig)
)

var (
	// ErrUpstreamUnavailable covers transport failures and rejected queries.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrEmptyResult means the query was valid but matched nothing within the radius.
	ErrEmptyResult = errors.New("empty result")

	// ErrStreetsUnavailable aborts a run: no poster without a street network.
	ErrStreetsUnavailable = errors.New("street network unavailable")
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheCorrupt = errors.New("cache corrupt")
	ErrCacheWrite   = errors.New("cache write failed")
)
