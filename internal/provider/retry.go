package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// retryPolicy is the spec-mandated backoff applied only to rate-limit and
// transient connection/5xx errors: base 1s, multiplier 2, 3 attempts, no
// jitter. Content-filter, timeout, and any other error are never retried
// at this layer.
const (
	maxRetryAttempts = 3
	baseRetryDelay   = 1 * time.Second
	retryMultiplier  = 2.0
)

// isRetryable reports whether err represents a rate-limit or transient
// connection/5xx failure, the only classes the adapter retries itself.
func isRetryable(err error, statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	if statusCode == http.StatusBadGateway || statusCode == http.StatusServiceUnavailable || statusCode == http.StatusGatewayTimeout {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
			strings.Contains(msg, "connection reset") || strings.Contains(msg, "connection refused") {
			return true
		}
	}
	return false
}

// withRetry runs fn up to maxRetryAttempts times with exponential backoff,
// retrying only when isRetryable reports the error retryable. fn returns
// the error together with an HTTP status code (0 if not applicable), and
// both are passed to isRetryable. Content-filter and timeout errors are
// returned immediately without consulting isRetryable.
func withRetry(ctx context.Context, fn func(attempt int) (Result, int, error)) (Result, error) {
	delay := baseRetryDelay

	var lastErr error
	for attempt := 0; attempt < maxRetryAttempts; attempt++ {
		result, statusCode, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		var cfe *ContentFilterError
		var te *TimeoutError
		if errors.As(err, &cfe) || errors.As(err, &te) {
			return Result{}, err
		}

		lastErr = err
		if !isRetryable(err, statusCode) {
			return Result{}, err
		}

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * retryMultiplier)
	}
	return Result{}, lastErr
}
