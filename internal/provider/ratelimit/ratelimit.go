package ratelimit

import (
	"context"
	"sync"
	"time"

	"marketpulse/internal/provider"
)

// MinInterval wraps an upstream and spaces call starts at least Interval
// apart. Each caller reserves its own start slot, so concurrent callers are
// released one at a time instead of all at once.
type MinInterval struct {
	U        provider.Upstream
	Interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func (m *MinInterval) Name() string { return m.U.Name() }

func (m *MinInterval) Quote(ctx context.Context, symbol string) (provider.Record, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.U.Quote(ctx, symbol)
}

func (m *MinInterval) Screener(ctx context.Context, category string, count int) ([]provider.Record, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.U.Screener(ctx, category, count)
}

func (m *MinInterval) wait(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	now := time.Now()
	slot := m.next
	if slot.Before(now) {
		slot = now
	}
	m.next = slot.Add(m.Interval)
	m.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		// hand the slot back unless a later caller already queued behind it
		m.mu.Lock()
		if m.next.Equal(slot.Add(m.Interval)) {
			m.next = slot
		}
		m.mu.Unlock()
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Wrap applies the configured limiter to u: a token bucket when rpm is set,
// otherwise a minimum interval when one is set, otherwise none.
func Wrap(u provider.Upstream, rpm, burst int, minInterval time.Duration) provider.Upstream {
	switch {
	case rpm > 0:
		if burst <= 0 {
			burst = 1
		}
		return &TokenBucketUpstream{U: u, TB: PerMinute(rpm, burst)}
	case minInterval > 0:
		return &MinInterval{U: u, Interval: minInterval}
	default:
		return u
	}
}
