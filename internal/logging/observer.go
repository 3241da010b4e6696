package logging

import (
	"time"

	"go.uber.org/zap"

	"marketpulse/internal/market"
)

// Observer reports market events to a zap logger.
type Observer struct {
	L *zap.Logger
}

var _ market.Observer = Observer{}

func (o Observer) FetchFailed(kind, key string, attempts int, err error) {
	o.L.Warn("upstream fetch failed",
		zap.String("kind", kind),
		zap.String("key", key),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
}

func (o Observer) SnapshotBuilt(s *market.Snapshot, elapsed time.Duration) {
	o.L.Info("snapshot built",
		zap.Duration("elapsed", elapsed),
		zap.Int("indices", len(s.Indices)),
		zap.Int("gainers", len(s.Gainers)),
		zap.Int("losers", len(s.Losers)),
		zap.Int("sectors", len(s.Sectors)),
		zap.Time("last_updated", s.LastUpdated),
	)
}

func (o Observer) CacheServed(hit bool, age time.Duration) {
	if hit {
		o.L.Debug("snapshot cache hit", zap.Duration("age", age))
		return
	}
	o.L.Debug("snapshot cache miss")
}
