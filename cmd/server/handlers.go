package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"marketpulse/internal/auth"
	"marketpulse/internal/cache"
	"marketpulse/internal/market"
)

type snapshotCache interface {
	Read(ctx context.Context) (*market.Snapshot, error)
	Refresh(ctx context.Context) (*market.Snapshot, error)
	State() cache.State
}

type api struct {
	cache   snapshotCache
	log     *zap.Logger
	timeout time.Duration
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string      `json:"status"`
	Cache  cacheHealth `json:"cache"`
}

type cacheHealth struct {
	Populated   bool      `json:"populated"`
	Fresh       bool      `json:"fresh"`
	AgeSeconds  float64   `json:"ageSeconds"`
	Generation  uint64    `json:"generation"`
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
}

// handler is the full middleware chain around the routes.
func (a *api) handler(gate auth.Gate) http.Handler {
	return withRequestID(withAccessLog(a.log, withJSONHeaders(withGzip(recoverPanic(a.log, limitBody(a.routes(gate)))))))
}

func (a *api) routes(gate auth.Gate) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.Handle("GET /market-data", auth.Require(gate, http.HandlerFunc(a.handleGetMarketData)))
	mux.Handle("POST /market-data/refresh", auth.Require(gate, http.HandlerFunc(a.handleRefreshMarketData)))
	return mux
}

func (a *api) handleGetMarketData(w http.ResponseWriter, r *http.Request) {
	a.serveSnapshot(w, r, a.cache.Read)
}

// handleRefreshMarketData drops the cached snapshot and blocks until a new
// one is built.
func (a *api) handleRefreshMarketData(w http.ResponseWriter, r *http.Request) {
	a.serveSnapshot(w, r, a.cache.Refresh)
}

func (a *api) serveSnapshot(w http.ResponseWriter, r *http.Request, get func(context.Context) (*market.Snapshot, error)) {
	ctx := r.Context()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	snap, err := get(ctx)
	if err != nil {
		a.log.Error("market data unavailable",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch market data"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := a.cache.State()
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Cache: cacheHealth{
			Populated:   st.Populated,
			Fresh:       st.Fresh,
			AgeSeconds:  st.Age.Seconds(),
			Generation:  st.Generation,
			LastUpdated: st.LastUpdated,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
