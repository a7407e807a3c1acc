package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/logger"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{Port: "0", Env: "development"}
	srv := New(cfg, logger.Nop(), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunReportsListenError(t *testing.T) {
	cfg := &config.Config{Port: "not-a-port", Env: "development"}
	err := New(cfg, logger.Nop(), http.NotFoundHandler()).Run(context.Background())
	assert.Error(t, err)
}
