package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/provider"
)

type countingUpstream struct{ calls atomic.Int32 }

func (c *countingUpstream) Name() string { return "counting" }

func (c *countingUpstream) Quote(_ context.Context, symbol string) (provider.Record, error) {
	c.calls.Add(1)
	return provider.Record{"symbol": symbol}, nil
}

func (c *countingUpstream) Screener(_ context.Context, _ string, _ int) ([]provider.Record, error) {
	c.calls.Add(1)
	return nil, nil
}

func TestTokenBucket_BurstThenBlocks(t *testing.T) {
	up := &countingUpstream{}
	// one token per minute after the initial burst of two
	u := &TokenBucketUpstream{U: up, TB: PerMinute(1, 2)}

	_, err := u.Quote(t.Context(), "^GSPC")
	require.NoError(t, err)
	_, err = u.Screener(t.Context(), provider.DayGainers, 5)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err = u.Quote(ctx, "^DJI")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int32(2), up.calls.Load())
}

func TestTokenBucket_Refills(t *testing.T) {
	up := &countingUpstream{}
	u := &TokenBucketUpstream{U: up, TB: NewTokenBucket(50, 1)}

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := u.Quote(t.Context(), "XLK")
		require.NoError(t, err)
	}
	// two refills at 50/s take at least ~40ms
	require.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	require.Equal(t, int32(3), up.calls.Load())
}

func TestMinInterval_SpacesConcurrentCalls(t *testing.T) {
	up := &countingUpstream{}
	u := &MinInterval{U: up, Interval: 20 * time.Millisecond}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.Quote(t.Context(), "XLF")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	require.Equal(t, int32(3), up.calls.Load())
}

func TestMinInterval_ZeroIntervalPassesThrough(t *testing.T) {
	up := &countingUpstream{}
	u := &MinInterval{U: up}
	_, err := u.Screener(t.Context(), provider.DayLosers, 5)
	require.NoError(t, err)
	require.Equal(t, "counting", u.Name())
}

func TestWrap_PicksLimiter(t *testing.T) {
	up := &countingUpstream{}

	_, ok := Wrap(up, 60, 0, time.Second).(*TokenBucketUpstream)
	require.True(t, ok, "rpm takes precedence")

	mi, ok := Wrap(up, 0, 0, time.Second).(*MinInterval)
	require.True(t, ok)
	require.Equal(t, time.Second, mi.Interval)

	require.Same(t, up, Wrap(up, 0, 0, 0))
}

func TestMinInterval_CanceledWaiterReleasesSlot(t *testing.T) {
	up := &countingUpstream{}
	u := &MinInterval{U: up, Interval: 60 * time.Millisecond}

	start := time.Now()
	_, err := u.Quote(t.Context(), "XLV")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Millisecond)
	defer cancel()
	_, err = u.Quote(ctx, "XLE")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the next caller takes the abandoned slot, one interval after the first call
	_, err = u.Quote(t.Context(), "XLU")
	require.NoError(t, err)
	require.Less(t, time.Since(start), 100*time.Millisecond)
	require.Equal(t, int32(2), up.calls.Load())
}
