package backtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/logger"
	"github.com/wonny/finlens/backend/pkg/redis"
)

// Engine compares a target's buy-and-hold performance with a benchmark
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	prices contracts.PriceSource
	cache  contracts.ResultCache
	cfg    config.BacktestConfig
	logger *logger.Logger
	now    func() time.Time
}

// Request selects the instruments and lookback. Empty fields take configured defaults.
type Request struct {
	EntityID    string
	BenchmarkID string
	Period      string
}

// Metrics holds one summary per series. Benchmark is nil when it could not be computed.
type Metrics struct {
	Target    *contracts.PerformanceSummary `json:"target"`
	Benchmark *contracts.PerformanceSummary `json:"benchmark,omitempty"`
}

// Result holds backtest results
type Result struct {
	RunID          string       `json:"run_id"`
	EntityID       string       `json:"entity_id"`
	BenchmarkID    string       `json:"benchmark_id"`
	Period         string       `json:"period"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
	PriceColumn    PriceColumn  `json:"price_column"`
	RiskFreeRate   float64      `json:"risk_free_rate"`
	Metrics        Metrics      `json:"metrics"`
	Chart          []ChartPoint `json:"chart"`
	BenchmarkError string       `json:"benchmark_error,omitempty"`
}

// NewEngine creates a new backtest engine. cache may be nil.
func NewEngine(
	prices contracts.PriceSource,
	cache contracts.ResultCache,
	cfg config.BacktestConfig,
	logger *logger.Logger,
) *Engine {
	return &Engine{
		prices: prices,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (e *Engine) withDefaults(req Request) Request {
	req.EntityID = strings.ToUpper(strings.TrimSpace(req.EntityID))
	req.BenchmarkID = strings.ToUpper(strings.TrimSpace(req.BenchmarkID))
	if req.BenchmarkID == "" {
		req.BenchmarkID = e.cfg.Benchmark
	}
	if req.Period == "" {
		req.Period = e.cfg.Period
	}
	return req
}

// Run executes the backtest. A target failure fails the run; a benchmark
// failure only leaves the benchmark metrics empty.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	req = e.withDefaults(req)
	if req.EntityID == "" {
		return nil, fmt.Errorf("entity id is required")
	}

	end := e.now()
	start, err := PeriodStart(req.Period, end)
	if err != nil {
		return nil, err
	}

	log := e.logger.WithEntity(req.EntityID).WithFields(map[string]interface{}{
		"benchmark": req.BenchmarkID,
		"period":    req.Period,
	})

	key := redis.BacktestKey(req.EntityID, req.BenchmarkID, req.Period)
	if e.cache != nil {
		var cached Result
		if hit, err := e.cache.Get(ctx, key, &cached); err != nil {
			log.WithError(err).Warn("Backtest cache read failed")
		} else if hit {
			log.Debug("Backtest cache hit")
			return &cached, nil
		}
	}

	log.Info("Starting backtest")

	target, col, err := e.loadPrices(ctx, req.EntityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", req.EntityID, err)
	}
	targetReturns := Returns(target)
	targetSummary, err := Summarize(targetReturns, e.cfg.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", req.EntityID, err)
	}

	result := &Result{
		RunID:        uuid.NewString(),
		EntityID:     req.EntityID,
		BenchmarkID:  req.BenchmarkID,
		Period:       req.Period,
		StartDate:    target[0].Date,
		EndDate:      target[len(target)-1].Date,
		PriceColumn:  col,
		RiskFreeRate: e.cfg.RiskFreeRate,
		Metrics:      Metrics{Target: targetSummary},
	}

	benchReturns, err := e.benchmarkReturns(ctx, req.BenchmarkID, target, start, end)
	if err == nil {
		result.Metrics.Benchmark, err = Summarize(benchReturns, e.cfg.RiskFreeRate)
	}
	if err != nil {
		result.BenchmarkError = err.Error()
		benchReturns = nil
		log.WithError(err).Warn("Benchmark unavailable")
	}

	result.Chart = AlignCurves(targetReturns, benchReturns)

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, result, e.cfg.CacheTTL); err != nil {
			log.WithError(err).Warn("Backtest cache write failed")
		}
	}

	log.WithFields(map[string]interface{}{
		"run_id":       result.RunID,
		"trading_days": targetSummary.TradingDays,
		"total_return": fmt.Sprintf("%.2f%%", targetSummary.TotalReturn*100),
		"cagr":         fmt.Sprintf("%.2f%%", targetSummary.CAGR*100),
		"sharpe":       fmt.Sprintf("%.2f", targetSummary.SharpeRatio),
		"max_drawdown": fmt.Sprintf("%.2f%%", targetSummary.MaxDrawdown*100),
	}).Info("Backtest completed")

	return result, nil
}

func (e *Engine) loadPrices(ctx context.Context, id string, start, end time.Time) ([]PricePoint, PriceColumn, error) {
	bars, err := e.prices.GetPriceSeries(ctx, id, start, end)
	if err != nil {
		return nil, "", fmt.Errorf("load prices: %w", err)
	}
	if len(bars) == 0 {
		return nil, "", fmt.Errorf("no price history: %w", contracts.ErrMissingData)
	}
	return ResolvePriceColumn(bars)
}

// benchmarkReturns reads the benchmark on the target's trading dates
func (e *Engine) benchmarkReturns(ctx context.Context, id string, target []PricePoint, start, end time.Time) (contracts.ReturnSeries, error) {
	points, _, err := e.loadPrices(ctx, id, start, end)
	if err != nil {
		return nil, err
	}
	return Returns(AlignToDates(points, dates(target))), nil
}
