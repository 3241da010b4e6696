// Package auth is the "is this caller allowed" gate in front of the market
// data endpoints. Session management lives elsewhere; this package only
// answers yes or no for a request.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("missing credentials")
	ErrForbidden       = errors.New("credentials rejected")
)

// Gate authorizes a request. It returns nil, ErrUnauthenticated or
// ErrForbidden.
type Gate interface {
	Authorize(r *http.Request) error
}

// GateFunc adapts a function to Gate.
type GateFunc func(r *http.Request) error

func (f GateFunc) Authorize(r *http.Request) error { return f(r) }

// AllowAll admits every request.
var AllowAll Gate = GateFunc(func(*http.Request) error { return nil })

// BearerTokens admits requests whose Authorization header carries one of a
// fixed set of bearer tokens.
type BearerTokens struct {
	tokens [][]byte
}

func NewBearerTokens(tokens []string) *BearerTokens {
	b := &BearerTokens{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			b.tokens = append(b.tokens, []byte(t))
		}
	}
	return b
}

func (b *BearerTokens) Authorize(r *http.Request) error {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return ErrUnauthenticated
	}
	got := []byte(strings.TrimSpace(token))
	match := 0
	for _, t := range b.tokens {
		match |= subtle.ConstantTimeCompare(got, t)
	}
	if match != 1 {
		return ErrForbidden
	}
	return nil
}

// Require wraps next so that it only runs for requests the gate admits.
func Require(g Gate, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := g.Authorize(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			w.Header().Set("WWW-Authenticate", `Bearer realm="market-data"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
		}
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
