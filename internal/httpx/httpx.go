package httpx

import (
	"net"
	"net/http"
	"time"
)

// One snapshot build fans out to every watch-list symbol plus two screeners
// against the same host; keep enough warm connections for a whole build.
const connsPerHost = 24

// Client wraps http.Client for the upstream quote host. Every request gets
// the default User-Agent and Headers unless it sets them itself.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

// New returns a client whose whole exchange is bounded by timeout. The
// transport's connect and header phases share that budget so a stalled
// upstream fails inside the caller's retry window instead of after it.
func New(timeout time.Duration) *Client {
	phase := 3 * time.Second
	if timeout > 0 && timeout < phase {
		phase = timeout
	}
	headers := 5 * time.Second
	if timeout > 0 {
		headers = timeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: phase, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          connsPerHost,
		MaxIdleConnsPerHost:   connsPerHost,
		MaxConnsPerHost:       connsPerHost,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   phase,
		ResponseHeaderTimeout: headers,
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: "marketpulse/1.0"}
}

// Do sends req with the default User-Agent and headers filled in. The
// request's own context bounds the call together with the client timeout.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.HTTP.Do(req)
}
