// Package market holds the snapshot data model and the fetchers that turn
// loosely typed upstream records into it.
package market

import "time"

// Quote is one symbol's current market state. Zero numbers mean "no usable
// data" and are indistinguishable from a real zero.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Mover is a screener row (top gainer or loser).
type Mover struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// SectorReading is a named basket's percent change.
type SectorReading struct {
	Name          string  `json:"name"`
	ChangePercent float64 `json:"changePercent"`
}

// Snapshot is one fully assembled market view. It is shared by pointer
// between all callers and must not be modified after construction.
type Snapshot struct {
	Indices     []Quote         `json:"indices"`
	Gainers     []Mover         `json:"gainers"`
	Losers      []Mover         `json:"losers"`
	Sectors     []SectorReading `json:"sectors"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// NoData is the sentinel quote returned when a symbol could not be fetched.
func NoData(symbol string) Quote {
	return Quote{Symbol: symbol, Name: symbol}
}
