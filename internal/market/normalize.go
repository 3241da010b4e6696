package market

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"marketpulse/internal/provider"
)

// Number coerces a provider value into a finite float64. Anything that is
// not a finite number becomes 0, including numeric-looking strings: the
// provider reports unavailable values as text such as "N/A". Formatted
// values of the form {"raw": 1.5, "fmt": "1.50"} are unwrapped.
func Number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		x, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0
		}
		f = x
	case map[string]any:
		return Number(n["raw"])
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Text returns a trimmed string field or "" when absent or not a string.
func Text(rec provider.Record, key string) string {
	s, _ := rec[key].(string)
	return strings.TrimSpace(s)
}

// DisplayName picks the human label for a record, falling back to symbol.
func DisplayName(rec provider.Record, symbol string) string {
	for _, key := range []string{"shortName", "longName", "displayName"} {
		if s := Text(rec, key); s != "" {
			return s
		}
	}
	return symbol
}

// QuoteFromRecord builds a Quote for symbol from a raw upstream record.
func QuoteFromRecord(symbol string, rec provider.Record) Quote {
	return Quote{
		Symbol:        symbol,
		Name:          DisplayName(rec, symbol),
		Price:         Number(rec["regularMarketPrice"]),
		Change:        Number(rec["regularMarketChange"]),
		ChangePercent: Number(rec["regularMarketChangePercent"]),
	}
}

// MoverFromRecord builds a Mover from a screener row. Rows without a symbol
// are unusable and reported as !ok.
func MoverFromRecord(rec provider.Record) (Mover, bool) {
	symbol := Text(rec, "symbol")
	if symbol == "" {
		return Mover{}, false
	}
	return Mover{
		Symbol:        symbol,
		Name:          DisplayName(rec, symbol),
		Price:         Number(rec["regularMarketPrice"]),
		ChangePercent: Number(rec["regularMarketChangePercent"]),
	}, true
}
