package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPClient() *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      2 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 3,
		CircuitResetAfter: time.Hour,
	}, nil)
}

func TestRateLimitedHTTPClient_CircuitBreakerOpens(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testHTTPClient()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := client.Get(ctx, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	}
	assert.True(t, client.IsOpen())

	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestRateLimitedHTTPClient_SuccessResetsFailures(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testHTTPClient()
	ctx := context.Background()

	fail.Store(true)
	for i := 0; i < 2; i++ {
		resp, err := client.Get(ctx, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	fail.Store(false)
	resp, err := client.Get(ctx, server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	fail.Store(true)
	for i := 0; i < 2; i++ {
		resp, err := client.Get(ctx, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.False(t, client.IsOpen())
}

func TestRateLimitedHTTPClient_HalfOpenAfterReset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testHTTPClient()
	client.resetAfter = time.Millisecond
	client.recordFailure(errors.New("boom"))
	client.recordFailure(errors.New("boom"))
	client.recordFailure(errors.New("boom"))
	require.True(t, client.IsOpen())

	time.Sleep(5 * time.Millisecond)
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, client.IsOpen())
}

func TestGetJSON_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrAuthenticationFailed, ErrCodeAuthenticationFailed},
		{"forbidden", http.StatusForbidden, "", ErrAuthenticationFailed, ErrCodeAuthenticationFailed},
		{"rate limited", http.StatusTooManyRequests, "", ErrRateLimitExceeded, ErrCodeRateLimitExceeded},
		{"not found", http.StatusNotFound, "", ErrNotFound, ErrCodeNotFound},
		{"server error", http.StatusServiceUnavailable, "down", ErrServerError, ErrCodeServerError},
		{"bad json", http.StatusOK, "{not json", ErrInvalidData, ErrCodeInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var out map[string]interface{}
			err := getJSON(context.Background(), testHTTPClient(), "test", server.URL, nil, &out)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}

func TestGetJSON_SendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Auth-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := getJSON(context.Background(), testHTTPClient(), "test", server.URL, map[string]string{"X-Auth-Token": "secret"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestDataSourceError(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := NewDataSourceError("espn", ErrCodeNetworkError, "request failed", inner)

	assert.Equal(t, "espn: network_error: request failed (dial tcp: timeout)", err.Error())
	assert.ErrorIs(t, err, ErrNetworkError)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ErrCodeUnknown, ErrorCode(inner))
}
