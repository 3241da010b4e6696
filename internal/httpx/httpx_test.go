package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDo_FillsDefaultsWithoutOverriding(t *testing.T) {
	var gotUA, gotCookie, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	c.Headers = map[string]string{"Cookie": "B=abc", "Accept": "text/plain"}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.Equal(t, "marketpulse/1.0", gotUA)
	require.Equal(t, "B=abc", gotCookie)
	require.Equal(t, "application/json", gotAccept)
}

func TestNew_TimeoutsFollowBudget(t *testing.T) {
	tr := New(8 * time.Second).HTTP.Transport.(*http.Transport)
	require.Equal(t, 8*time.Second, tr.ResponseHeaderTimeout)
	require.Equal(t, 3*time.Second, tr.TLSHandshakeTimeout)
	require.Equal(t, connsPerHost, tr.MaxConnsPerHost)

	tr = New(time.Second).HTTP.Transport.(*http.Transport)
	require.Equal(t, time.Second, tr.ResponseHeaderTimeout)
	require.Equal(t, time.Second, tr.TLSHandshakeTimeout)
}

func TestDo_HeaderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(50 * time.Millisecond)
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	_, err = c.Do(req)
	require.Error(t, err)
}
