package yahoo

import (
	"context"
	"fmt"
	"maps"

	"marketpulse/internal/provider"
)

// Quote retrieves the current quote for a single symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (provider.Record, error) {
	query := maps.Clone(c.query)
	query.Set("symbols", symbol)

	body, err := c.getJSON(ctx, fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, query.Encode()))
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}

	// {
	//   "quoteResponse": {
	//     "result": [{"symbol": "^GSPC", "shortName": "S&P 500", "regularMarketPrice": 5021.84, ...}],
	//     "error": null
	//   }
	// }
	result, err := envelope(body, "quoteResponse")
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("quote %s: %w", symbol, provider.ErrNotFound)
	}
	rec, ok := result[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("quote %s: unexpected result type %T", symbol, result[0])
	}
	return provider.Record(rec), nil
}
