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

	"github.com/wonny/finlens/backend/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.Nop())
	require.NotNil(t, client)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.Nil(t, client.limiter)

	client.WithTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"IBM","price":"101.5"}`))
	}))
	defer server.Close()

	var out struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	err := New(logger.Nop()).GetJSON(context.Background(), server.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "IBM", out.Symbol)
	assert.Equal(t, "101.5", out.Price)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(3, time.Millisecond)
	body, err := client.GetBytes(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(logger.Nop()).WithRetry(3, time.Millisecond).GetBytes(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, IsRetryableStatus(500))
	assert.True(t, IsRetryableStatus(503))
	assert.True(t, IsRetryableStatus(429))
	assert.False(t, IsRetryableStatus(200))
	assert.False(t, IsRetryableStatus(404))
}

func TestRateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New(logger.Nop()).DisableRetry().WithRateLimit(1)
	_, err := client.GetBytes(context.Background(), server.URL)
	require.NoError(t, err)

	// the single token is spent; the next call must wait ~1 minute and hit the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetBytes(ctx, server.URL)
	assert.Error(t, err)
}
