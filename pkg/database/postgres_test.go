package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/pkg/config"
)

func TestNewRequiresURL(t *testing.T) {
	_, err := New(&config.Config{})
	assert.Error(t, err)
}

func TestMigrateAndHealth(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{
		URL:             url,
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	}}

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, db.Migrate(ctx))
	// second run must be a no-op
	require.NoError(t, db.Migrate(ctx))

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}
