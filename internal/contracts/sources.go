package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: 코어가 소비하는 외부 데이터 인터페이스는 여기서만 정의

// StatementSource supplies every raw statement row of an entity.
// An entity without rows returns an empty slice and no error.
type StatementSource interface {
	GetStatementItems(ctx context.Context, entityID string) ([]RawStatementItem, error)
}

// InfoSnapshotSource supplies the most recent vendor snapshot as key → raw string
type InfoSnapshotSource interface {
	GetLatestInfoSnapshot(ctx context.Context, entityID string) (map[string]string, error)
}

// PriceSource supplies daily bars in ascending date order, empty when unknown
type PriceSource interface {
	GetPriceSeries(ctx context.Context, entityID string, from, to time.Time) ([]PriceBar, error)
}

// FactorSource supplies monthly three-factor observations in ascending order
type FactorSource interface {
	GetFactorSeries(ctx context.Context, from, to time.Time) ([]FactorObservation, error)
}

// RatioSink persists derived ratios with upsert semantics
type RatioSink interface {
	UpsertRatios(ctx context.Context, entityID string, ratios []CanonicalRatio) error
}

// RatioReader reads persisted ratios back for reports and the API
type RatioReader interface {
	GetRatios(ctx context.Context, entityID string) ([]CanonicalRatio, error)
	// LatestForEntities returns, per entity, the named ratios of that entity's most recent fiscal year
	LatestForEntities(ctx context.Context, entityIDs []string, names []string) (map[string][]CanonicalRatio, error)
}

// ResultCache stores computed results as JSON. A miss is (false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
