package market

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"marketpulse/internal/provider"
)

// Retryable reports whether err is worth another attempt: timeouts, dropped
// connections, throttling and upstream 5xx.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, provider.ErrRateLimited) || errors.Is(err, provider.ErrUnavailable) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	// wrappers that flatten the cause into text
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "reset by peer")
}

// withRetry runs call up to retries+1 times while the error is retryable,
// sleeping backoff*attempt between attempts. It returns the attempt count.
func withRetry[T any](ctx context.Context, retries int, backoff time.Duration, call func() (T, error)) (T, int, error) {
	var (
		v   T
		err error
	)
	attempt := 0
	for {
		attempt++
		v, err = call()
		if err == nil || attempt > retries || !Retryable(err) || ctx.Err() != nil {
			return v, attempt, err
		}
		if backoff > 0 {
			t := time.NewTimer(backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				t.Stop()
				return v, attempt, err
			case <-t.C:
			}
		}
	}
}
