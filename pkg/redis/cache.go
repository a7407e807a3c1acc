package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON encoded values under a namespaced key
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get loads a cached value into dest. A missing key is reported as (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

const (
	TTLShort  = 1 * time.Minute
	TTLMedium = 10 * time.Minute
	TTLLong   = 1 * time.Hour
	TTLDaily  = 24 * time.Hour
)

// ValuationKey keys a DCF result per entity and calendar day
func ValuationKey(entityID string, day time.Time) string {
	return fmt.Sprintf("valuation:%s:%s", strings.ToUpper(entityID), day.Format("2006-01-02"))
}

// BacktestKey keys a backtest result per target, benchmark and period
func BacktestKey(entityID, benchmarkID, period string) string {
	return fmt.Sprintf("backtest:%s:%s:%s", strings.ToUpper(entityID), strings.ToUpper(benchmarkID), period)
}
