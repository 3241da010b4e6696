package yahoo

import (
	"context"
	"fmt"
	"maps"
	"strconv"

	"marketpulse/internal/provider"
)

// Screener runs a predefined screener and returns its quotes in the
// provider's ranking.
func (c *Client) Screener(ctx context.Context, category string, count int) ([]provider.Record, error) {
	query := maps.Clone(c.query)
	query.Set("scrIds", category)
	if count > 0 {
		query.Set("count", strconv.Itoa(count))
	}

	body, err := c.getJSON(ctx, fmt.Sprintf("%s/v1/finance/screener/predefined/saved?%s", c.baseURL, query.Encode()))
	if err != nil {
		return nil, fmt.Errorf("screener %s: %w", category, err)
	}

	// {
	//   "finance": {
	//     "result": [{"id": "day_gainers", "quotes": [{"symbol": "ABC", ...}, ...]}],
	//     "error": null
	//   }
	// }
	result, err := envelope(body, "finance")
	if err != nil {
		return nil, fmt.Errorf("screener %s: %w", category, err)
	}
	if len(result) == 0 {
		return []provider.Record{}, nil
	}
	first, ok := result[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("screener %s: unexpected result type %T", category, result[0])
	}
	quotes, _ := first["quotes"].([]any)

	out := make([]provider.Record, 0, len(quotes))
	for _, q := range quotes {
		if count > 0 && len(out) == count {
			break
		}
		rec, ok := q.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, provider.Record(rec))
	}
	return out, nil
}
