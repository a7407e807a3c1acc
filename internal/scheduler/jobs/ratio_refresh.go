package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/finlens/backend/internal/s0_data/collector"
	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// EntityCollector collects raw vendor data for a watchlist
type EntityCollector interface {
	CollectAll(ctx context.Context, symbols []string, cfg collector.Config) []collector.FetchResult
}

// RatioDeriver recomputes stored ratios of one entity
type RatioDeriver interface {
	DeriveRatios(ctx context.Context, entityID string) (bool, error)
}

// RatioRefreshJob collects the watchlist and re-derives ratios
// ⭐ SSOT: 재무비율 갱신 스케줄은 이 Job에서만
type RatioRefreshJob struct {
	collector EntityCollector
	deriver   RatioDeriver
	symbols   []string
	schedule  string
	logger    *logger.Logger
}

// NewRatioRefreshJob creates a new ratio refresh job
func NewRatioRefreshJob(col EntityCollector, deriver RatioDeriver, cfg config.SchedulerConfig, log *logger.Logger) *RatioRefreshJob {
	return &RatioRefreshJob{
		collector: col,
		deriver:   deriver,
		symbols:   cfg.RefreshSymbols,
		schedule:  cfg.RefreshSchedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *RatioRefreshJob) Name() string {
	return "ratio_refresh"
}

// Schedule returns the configured cron schedule
func (j *RatioRefreshJob) Schedule() string {
	return j.schedule
}

// Run collects every symbol then derives ratios from whatever is stored.
// A collection failure does not skip derivation; the job fails only when no symbol derived.
func (j *RatioRefreshJob) Run(ctx context.Context) error {
	if len(j.symbols) == 0 {
		j.logger.Warn("Ratio refresh has no symbols configured")
		return nil
	}

	j.logger.WithField("symbols", len(j.symbols)).Info("Starting scheduled ratio refresh")

	// 1. Collect
	results := j.collector.CollectAll(ctx, j.symbols, collector.Config{Workers: 1})
	collectFailed := 0
	for _, r := range results {
		if r.Error != nil {
			collectFailed++
		}
	}

	// 2. Derive
	derived, skipped := 0, 0
	var lastErr error
	for _, r := range results {
		ok, err := j.deriver.DeriveRatios(ctx, r.EntityID)
		switch {
		case err != nil:
			lastErr = err
			j.logger.WithEntity(r.EntityID).WithError(err).Error("Ratio derivation failed")
		case ok:
			derived++
		default:
			skipped++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"derived":        derived,
		"skipped":        skipped,
		"collect_failed": collectFailed,
	}).Info("Scheduled ratio refresh completed")

	if derived == 0 && lastErr != nil {
		return fmt.Errorf("no entity derived: %w", lastErr)
	}
	return nil
}
