package market

import (
	"context"
	"time"

	"marketpulse/internal/provider"
)

// QuoteFetcher fetches single-symbol quotes. Failures never escape: a
// symbol that cannot be fetched yields NoData so one bad symbol cannot
// poison an aggregation.
type QuoteFetcher struct {
	Upstream provider.Upstream
	// Retries is the number of extra attempts for transient errors.
	Retries  int
	Backoff  time.Duration
	Observer Observer
}

func (f *QuoteFetcher) Fetch(ctx context.Context, symbol string) Quote {
	rec, attempts, err := withRetry(ctx, f.Retries, f.Backoff, func() (provider.Record, error) {
		return f.Upstream.Quote(ctx, symbol)
	})
	if err != nil {
		observerOrNop(f.Observer).FetchFailed("quote", symbol, attempts, err)
		return NoData(symbol)
	}
	return QuoteFromRecord(symbol, rec)
}

// ScreenerFetcher runs category queries. Results are optional enrichment,
// so failure yields an empty list rather than an error.
type ScreenerFetcher struct {
	Upstream provider.Upstream
	Retries  int
	Backoff  time.Duration
	Observer Observer
}

// Fetch returns at most count movers in the provider's order.
func (f *ScreenerFetcher) Fetch(ctx context.Context, category string, count int) []Mover {
	recs, attempts, err := withRetry(ctx, f.Retries, f.Backoff, func() ([]provider.Record, error) {
		return f.Upstream.Screener(ctx, category, count)
	})
	if err != nil {
		observerOrNop(f.Observer).FetchFailed("screener", category, attempts, err)
		return []Mover{}
	}
	out := make([]Mover, 0, min(len(recs), max(count, 0)))
	for _, rec := range recs {
		if count > 0 && len(out) == count {
			break
		}
		if m, ok := MoverFromRecord(rec); ok {
			out = append(out, m)
		}
	}
	return out
}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return NopObserver{}
	}
	return o
}
