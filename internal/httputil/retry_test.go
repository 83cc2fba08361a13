// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Keep backoff waits out of the test runtime.
	RetryBaseDelay = 1 * time.Millisecond
}

// rateLimitedServer answers 429 for the first fail calls, then status.
func rateLimitedServer(t *testing.T, fail int32, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= fail {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func headReq(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodHead, url, nil)
	require.NoError(t, err)
	return req
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		fail       int32
		status     int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{"no rate limiting", 0, http.StatusOK, 5, http.StatusOK, 1},
		{"recovers after two 429s", 2, http.StatusOK, 5, http.StatusOK, 3},
		{"exhausts retries, 429 surfaces", 100, 0, 2, http.StatusTooManyRequests, 3},
		{"default retry budget", 100, 0, 0, http.StatusTooManyRequests, 4},
		{"server errors are not retried", 0, http.StatusInternalServerError, 5, http.StatusInternalServerError, 1},
		{"not found is not retried", 0, http.StatusNotFound, 5, http.StatusNotFound, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, calls := rateLimitedServer(t, tt.fail, tt.status)

			resp, err := DoWithRetry(context.Background(), ts.Client(), headReq(t, ts.URL), tt.maxRetries)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestDoWithRetryContextCancelDuringBackoff(t *testing.T) {
	ts, _ := rateLimitedServer(t, 100, 0)

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := DoWithRetry(ctx, ts.Client(), headReq(t, ts.URL), 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
