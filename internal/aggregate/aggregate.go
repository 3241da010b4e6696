package aggregate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/market"
	"marketpulse/internal/provider"
)

// MaxMovers bounds the gainers and losers lists.
const MaxMovers = 5

type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) market.Quote
}

type ScreenerFetcher interface {
	Fetch(ctx context.Context, category string, count int) []market.Mover
}

// Aggregator builds one Snapshot per Build call from concurrent fetches of
// the watch-list and both screeners.
type Aggregator struct {
	Quotes    QuoteFetcher
	Screener  ScreenerFetcher
	WatchList WatchList
	// ScreenerCount is the row count requested from each screener; the
	// result is truncated to MaxMovers regardless.
	ScreenerCount int
	// MaxConcurrency optionally bounds in-flight quote fetches; 0 (the
	// default) means unbounded. Screener calls are never gated by it.
	MaxConcurrency int
	Now            func() time.Time
	Observer       market.Observer
}

// Build fans out every fetch, waits for all of them and assembles the
// snapshot. Fetch failures only degrade the result; the returned error is
// reserved for unexpected faults such as a panicking fetcher.
func (a *Aggregator) Build(ctx context.Context) (*market.Snapshot, error) {
	start := time.Now()

	indices := make([]market.Quote, len(a.WatchList.Indices))
	sectors := make([]market.Quote, len(a.WatchList.Sectors))
	var gainers, losers []market.Mover

	count := a.ScreenerCount
	if count <= 0 {
		count = MaxMovers
	}

	// Screeners go first on their own group so the quote limit below can
	// never hold them back.
	var screens errgroup.Group
	screens.Go(guard("screener "+provider.DayGainers, func() { gainers = a.Screener.Fetch(ctx, provider.DayGainers, count) }))
	screens.Go(guard("screener "+provider.DayLosers, func() { losers = a.Screener.Fetch(ctx, provider.DayLosers, count) }))

	var quotes errgroup.Group
	if a.MaxConcurrency > 0 {
		quotes.SetLimit(a.MaxConcurrency)
	}
	for i, s := range a.WatchList.Indices {
		quotes.Go(guard("quote "+s.Symbol, func() { indices[i] = a.Quotes.Fetch(ctx, s.Symbol) }))
	}
	for i, s := range a.WatchList.Sectors {
		quotes.Go(guard("quote "+s.Symbol, func() { sectors[i] = a.Quotes.Fetch(ctx, s.Symbol) }))
	}
	if err := errors.Join(quotes.Wait(), screens.Wait()); err != nil {
		return nil, err
	}

	readings := make([]market.SectorReading, len(sectors))
	for i, q := range sectors {
		name := a.WatchList.Sectors[i].Name
		if name == "" {
			name = q.Name
		}
		readings[i] = market.SectorReading{Name: name, ChangePercent: q.ChangePercent}
	}

	snap := Assemble(indices, gainers, losers, readings, a.now())
	observer(a.Observer).SnapshotBuilt(snap, time.Since(start))
	return snap, nil
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// guard runs fn and turns a panic into an error so one broken fetch fails
// the build instead of the process.
func guard(what string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("aggregate: %s panicked: %v", what, r)
			}
		}()
		fn()
		return nil
	}
}

// Assemble applies the snapshot invariants to already-normalized inputs:
// indices without a positive price are dropped, movers are cut to
// MaxMovers in the given order and sectors are sorted by change, highest
// first. Inputs are not modified.
func Assemble(indices []market.Quote, gainers, losers []market.Mover, sectors []market.SectorReading, at time.Time) *market.Snapshot {
	return &market.Snapshot{
		Indices:     FilterIndices(indices),
		Gainers:     TopMovers(gainers, MaxMovers),
		Losers:      TopMovers(losers, MaxMovers),
		Sectors:     SortSectors(sectors),
		LastUpdated: at,
	}
}

// FilterIndices drops quotes whose price is not positive, keeping order.
func FilterIndices(in []market.Quote) []market.Quote {
	out := make([]market.Quote, 0, len(in))
	for _, q := range in {
		if q.Price > 0 {
			out = append(out, q)
		}
	}
	return out
}

// TopMovers returns a copy of at most n movers in provider order.
func TopMovers(in []market.Mover, n int) []market.Mover {
	if len(in) > n {
		in = in[:n]
	}
	out := make([]market.Mover, len(in))
	copy(out, in)
	return out
}

// SortSectors returns the readings ordered by ChangePercent descending.
// Equal values keep their input order.
func SortSectors(in []market.SectorReading) []market.SectorReading {
	out := slices.Clone(in)
	if out == nil {
		out = []market.SectorReading{}
	}
	slices.SortStableFunc(out, func(a, b market.SectorReading) int {
		switch {
		case a.ChangePercent > b.ChangePercent:
			return -1
		case a.ChangePercent < b.ChangePercent:
			return 1
		}
		return 0
	})
	return out
}

func observer(o market.Observer) market.Observer {
	if o == nil {
		return market.NopObserver{}
	}
	return o
}
