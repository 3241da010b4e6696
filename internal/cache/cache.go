package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"marketpulse/internal/market"
)

// Validity is how long a stored snapshot is served before it is rebuilt.
// It bounds upstream load independent of caller volume.
const Validity = 5 * time.Minute

// BuildFunc produces a fresh snapshot.
type BuildFunc func(ctx context.Context) (*market.Snapshot, error)

// entry pairs a snapshot with the time it was stored.
type entry struct {
	snap     *market.Snapshot
	storedAt time.Time
}

// Cache holds at most one snapshot. It is EMPTY until the first Read and
// POPULATED afterwards until Invalidate.
//
// Concurrent misses share one build. Every Invalidate starts a new
// generation: reads after it never join a build started before it, and a
// build from an older generation is returned to its waiters but not stored.
type Cache struct {
	build        BuildFunc
	validity     time.Duration
	buildTimeout time.Duration
	now          func() time.Time
	obs          market.Observer

	mu    sync.RWMutex
	entry *entry
	gen   uint64

	sf singleflight.Group
}

type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithValidity overrides the validity window.
func WithValidity(d time.Duration) Option {
	return func(c *Cache) { c.validity = d }
}

// WithBuildTimeout bounds each shared build. Builds run detached from the
// caller that triggered them, so this is their only deadline.
func WithBuildTimeout(d time.Duration) Option {
	return func(c *Cache) { c.buildTimeout = d }
}

func WithObserver(o market.Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.obs = o
		}
	}
}

func New(build BuildFunc, opts ...Option) *Cache {
	c := &Cache{
		build:    build,
		validity: Validity,
		now:      time.Now,
		obs:      market.NopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the stored snapshot while it is younger than the validity
// window and otherwise builds, stores and returns a new one. A caller whose
// ctx ends stops waiting; the build itself carries on for the others.
func (c *Cache) Read(ctx context.Context) (*market.Snapshot, error) {
	c.mu.RLock()
	e, gen := c.entry, c.gen
	c.mu.RUnlock()

	if snap, age, ok := c.fresh(e); ok {
		c.obs.CacheServed(true, age)
		return snap, nil
	}
	c.obs.CacheServed(false, 0)

	ch := c.sf.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return c.refresh(ctx, gen)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*market.Snapshot), nil
	}
}

// Invalidate drops the stored snapshot regardless of its age.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.gen++
	c.mu.Unlock()
}

// Refresh invalidates and then reads, blocking for the full build.
func (c *Cache) Refresh(ctx context.Context) (*market.Snapshot, error) {
	c.Invalidate()
	return c.Read(ctx)
}

// State describes the cache for health reporting.
type State struct {
	Populated   bool          `json:"populated"`
	StoredAt    time.Time     `json:"storedAt,omitzero"`
	Age         time.Duration `json:"-"`
	Fresh       bool          `json:"fresh"`
	Generation  uint64        `json:"generation"`
	LastUpdated time.Time     `json:"lastUpdated,omitzero"`
}

func (c *Cache) State() State {
	c.mu.RLock()
	e, gen := c.entry, c.gen
	c.mu.RUnlock()

	st := State{Generation: gen}
	if e == nil {
		return st
	}
	_, age, ok := c.fresh(e)
	st.Populated = true
	st.StoredAt = e.storedAt
	st.Age = age
	st.Fresh = ok
	st.LastUpdated = e.snap.LastUpdated
	return st
}

func (c *Cache) fresh(e *entry) (*market.Snapshot, time.Duration, bool) {
	if e == nil {
		return nil, 0, false
	}
	age := c.now().Sub(e.storedAt)
	return e.snap, age, age < c.validity
}

// refresh runs one build for generation gen and stores the result if the
// generation is still current.
func (c *Cache) refresh(ctx context.Context, gen uint64) (snap *market.Snapshot, err error) {
	// another caller may have stored a snapshot between our check and now
	c.mu.RLock()
	e, cur := c.entry, c.gen
	c.mu.RUnlock()
	if cur == gen {
		if s, _, ok := c.fresh(e); ok {
			return s, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fmt.Errorf("cache: build panicked: %v", r)
		}
	}()

	bctx := context.WithoutCancel(ctx)
	if c.buildTimeout > 0 {
		var cancel context.CancelFunc
		bctx, cancel = context.WithTimeout(bctx, c.buildTimeout)
		defer cancel()
	}

	snap, err = c.build(bctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("cache: build returned no snapshot")
	}

	c.mu.Lock()
	if c.gen == gen {
		c.entry = &entry{snap: snap, storedAt: c.now()}
	}
	c.mu.Unlock()
	return snap, nil
}
