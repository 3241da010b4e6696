package market

import "time"

// Observer receives the events the fetch and cache path produce. It must be
// safe for concurrent use.
type Observer interface {
	// FetchFailed reports an upstream call that was given up on; kind is
	// "quote" or "screener", key the symbol or screener category.
	FetchFailed(kind, key string, attempts int, err error)
	SnapshotBuilt(s *Snapshot, elapsed time.Duration)
	// CacheServed reports a cache read; age is the age of the served
	// snapshot and zero on a miss.
	CacheServed(hit bool, age time.Duration)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) FetchFailed(string, string, int, error) {}
func (NopObserver) SnapshotBuilt(*Snapshot, time.Duration)  {}
func (NopObserver) CacheServed(bool, time.Duration)         {}
