package provider

import (
	"context"
	"errors"
)

// Record is one quote-like object exactly as the upstream returned it.
// Field values are loosely typed and must be coerced before use.
type Record map[string]any

// Upstream is the external market-data source.
//
//go:generate mockgen -package=market_test -destination=../market/mock_upstream_test.go -source=provider.go Upstream
type Upstream interface {
	Name() string
	// Quote looks up a single symbol.
	Quote(ctx context.Context, symbol string) (Record, error)
	// Screener runs a predefined category query (e.g. "day_gainers") and
	// returns at most count records in the provider's own ranking.
	Screener(ctx context.Context, category string, count int) ([]Record, error)
}

var (
	ErrNotFound     = errors.New("symbol not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable marks an upstream 5xx response.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Screener categories understood by the upstream.
const (
	DayGainers = "day_gainers"
	DayLosers  = "day_losers"
)
