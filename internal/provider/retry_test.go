package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
		want       bool
	}{
		{"rate limited status", errors.New("boom"), http.StatusTooManyRequests, true},
		{"bad gateway status", errors.New("boom"), http.StatusBadGateway, true},
		{"service unavailable status", errors.New("boom"), http.StatusServiceUnavailable, true},
		{"rate limit message", errors.New("you are being rate limited"), 0, true},
		{"fatal error", errors.New("invalid api key"), http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := isRetryable(tc.err, tc.statusCode)
			if got != tc.want {
				t.Errorf("isRetryable(%v, %d) = %v, want %v", tc.err, tc.statusCode, got, tc.want)
			}
		})
	}
}

func TestWithRetry_ContentFilterNotRetried(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), func(attempt int) (Result, int, error) {
		calls++
		return Result{}, 0, &ContentFilterError{Provider: "openai", ModelName: "gpt-4o", Message: "content_policy"}
	})

	var cfe *ContentFilterError
	if !errors.As(err, &cfe) {
		t.Fatalf("expected ContentFilterError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call for a content filter error, got %d", calls)
	}
}

func TestWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), func(attempt int) (Result, int, error) {
		calls++
		if attempt == 0 {
			return Result{}, http.StatusServiceUnavailable, errors.New("upstream unavailable")
		}
		return Result{Text: "ok"}, 0, nil
	})

	if err != nil {
		t.Fatalf("expected eventual success, got error: %v", err)
	}
	if result.Text != "ok" {
		t.Errorf("expected text 'ok', got %q", result.Text)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestLooksLikeContentFilter(t *testing.T) {
	cases := map[string]bool{
		"Your request was flagged by our content_policy":   true,
		"This content violates our moderation guidelines":  true,
		"content filter triggered":                         true,
		"invalid request: missing required field 'model'":  false,
	}
	for msg, want := range cases {
		if got := looksLikeContentFilter(msg); got != want {
			t.Errorf("looksLikeContentFilter(%q) = %v, want %v", msg, got, want)
		}
	}
}
