package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"marketpulse/internal/provider"
)

// getJSON performs a GET and decodes the body into a loosely typed map.
// Numbers are kept as json.Number so the normalization layer sees exactly
// what the provider sent.
func (c *Client) getJSON(ctx context.Context, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return nil, provider.ErrUnauthorized
	case res.StatusCode == http.StatusNotFound:
		return nil, provider.ErrNotFound
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, provider.ErrRateLimited
	case res.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", provider.ErrUnavailable, res.StatusCode)
	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("unexpected status code %d: %s", res.StatusCode, string(b))
	}

	var body map[string]any
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return body, nil
}

// envelope unwraps {"<key>": {"result": [...], "error": ...}}.
func envelope(body map[string]any, key string) ([]any, error) {
	inner, ok := body[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing %q in response", key)
	}
	if e := inner["error"]; e != nil {
		if m, ok := e.(map[string]any); ok {
			return nil, fmt.Errorf("provider error: %v: %v", m["code"], m["description"])
		}
		return nil, fmt.Errorf("provider error: %v", e)
	}
	result, _ := inner["result"].([]any)
	return result, nil
}
