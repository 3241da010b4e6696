// Package app wires configuration into the aggregation pipeline shared by
// the server and the one-shot CLI.
package app

import (
	"time"

	"marketpulse/internal/aggregate"
	"marketpulse/internal/config"
	"marketpulse/internal/httpx"
	"marketpulse/internal/market"
	"marketpulse/internal/provider"
	"marketpulse/internal/provider/ratelimit"
	"marketpulse/internal/provider/yahoo"
)

// Upstream builds the rate-limited Yahoo client described by cfg.
func Upstream(cfg config.Yahoo) provider.Upstream {
	httpClient := httpx.New(time.Duration(cfg.TimeoutSec) * time.Second)
	if cfg.UserAgent != "" {
		httpClient.UserAgent = cfg.UserAgent
	}
	if cfg.Cookie != "" {
		httpClient.Headers = map[string]string{"Cookie": cfg.Cookie}
	}
	y := yahoo.New(
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithBaseURL(cfg.BaseURL),
		yahoo.WithCrumb(cfg.Crumb),
	)
	return ratelimit.Wrap(y, cfg.MaxRequestsPerMinute, cfg.Burst,
		time.Duration(cfg.MinRequestIntervalMs)*time.Millisecond)
}

// Aggregator assembles fetchers around up according to cfg.
func Aggregator(cfg config.Config, up provider.Upstream, obs market.Observer) *aggregate.Aggregator {
	backoff := time.Duration(cfg.Yahoo.RetryBackoffMs) * time.Millisecond
	return &aggregate.Aggregator{
		Quotes:         &market.QuoteFetcher{Upstream: up, Retries: cfg.Yahoo.Retries, Backoff: backoff, Observer: obs},
		Screener:       &market.ScreenerFetcher{Upstream: up, Retries: cfg.Yahoo.Retries, Backoff: backoff, Observer: obs},
		WatchList:      cfg.WatchList,
		ScreenerCount:  cfg.Aggregate.ScreenerCount,
		MaxConcurrency: cfg.Aggregate.MaxConcurrency,
		Observer:       obs,
	}
}
