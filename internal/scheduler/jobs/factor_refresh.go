package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/finlens/backend/pkg/logger"
)

// FactorRefresher reloads the Fama-French factor table
type FactorRefresher interface {
	RefreshFactors(ctx context.Context) (int, error)
}

// FactorRefreshJob reloads the factor months weekly; the library publishes monthly
type FactorRefreshJob struct {
	refresher FactorRefresher
	logger    *logger.Logger
}

// NewFactorRefreshJob creates a new factor refresh job
func NewFactorRefreshJob(refresher FactorRefresher, log *logger.Logger) *FactorRefreshJob {
	return &FactorRefreshJob{refresher: refresher, logger: log}
}

// Name returns the job name
func (j *FactorRefreshJob) Name() string {
	return "factor_refresh"
}

// Schedule returns the cron schedule (Sunday 05:00)
func (j *FactorRefreshJob) Schedule() string {
	return "0 0 5 * * SUN"
}

// Run executes the factor refresh
func (j *FactorRefreshJob) Run(ctx context.Context) error {
	n, err := j.refresher.RefreshFactors(ctx)
	if err != nil {
		return fmt.Errorf("refresh factors: %w", err)
	}
	j.logger.WithField("months", n).Info("Scheduled factor refresh completed")
	return nil
}
