package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/internal/external/alphavantage"
	"github.com/wonny/finlens/backend/internal/external/yahoo"
	"github.com/wonny/finlens/backend/internal/s0_data"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// Vendor is the fundamentals and price vendor (Alpha Vantage)
type Vendor interface {
	Quote(ctx context.Context, symbol string) (float64, error)
	Overview(ctx context.Context, symbol string) (map[string]string, error)
	Statements(ctx context.Context, symbol string, stmt contracts.StatementType) ([]contracts.RawStatementItem, error)
	DailyAdjusted(ctx context.Context, symbol string, full bool) ([]contracts.PriceBar, error)
}

// LiveQuoter supplies a fresher price than the fundamentals vendor
type LiveQuoter interface {
	Quote(ctx context.Context, symbol string) (yahoo.Quote, error)
}

// FactorFetcher downloads the monthly factor table
type FactorFetcher interface {
	FetchMonthly(ctx context.Context) ([]contracts.FactorObservation, error)
}

// Stores are the write side of S0
type Stores struct {
	Statements interface {
		SaveItems(ctx context.Context, items []contracts.RawStatementItem) (int, error)
	}
	Info interface {
		SaveFields(ctx context.Context, fields []contracts.RawInfoField) error
	}
	Prices interface {
		GetLatestDate(ctx context.Context, entityID string) (time.Time, error)
		SaveBatch(ctx context.Context, entityID string, bars []contracts.PriceBar) error
	}
	Factors interface {
		SaveBatch(ctx context.Context, obs []contracts.FactorObservation) error
	}
}

// StoresFrom wires the postgres repositories
func StoresFrom(repo *s0_data.Repository) Stores {
	return Stores{
		Statements: repo.Statements,
		Info:       repo.Info,
		Prices:     repo.Prices,
		Factors:    repo.Factors,
	}
}

// Collector orchestrates data collection from external sources
// ⭐ SSOT: 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	vendor  Vendor
	live    LiveQuoter
	factors FactorFetcher
	stores  Stores
	logger  *logger.Logger
	now     func() time.Time
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance. live and factors may be nil.
func NewCollector(vendor Vendor, live LiveQuoter, factors FactorFetcher, stores Stores, log *logger.Logger) *Collector {
	return &Collector{
		vendor:  vendor,
		live:    live,
		factors: factors,
		stores:  stores,
		logger:  log.WithField("module", "collector"),
		now:     time.Now,
	}
}

// FetchResult represents the result of collecting one entity
type FetchResult struct {
	EntityID       string
	StatementCount int // newly inserted rows
	InfoCount      int
	PriceCount     int
	Error          error
}

// CollectEntity fetches quote, overview, the three statements and daily prices of one symbol.
// Partial failures are logged; the first failure is reported in the result.
func (c *Collector) CollectEntity(ctx context.Context, symbol string) FetchResult {
	id := strings.ToUpper(strings.TrimSpace(symbol))
	res := FetchResult{EntityID: id}
	log := c.logger.WithEntity(id)
	fail := func(err error) {
		if res.Error == nil {
			res.Error = err
		}
	}

	// 1. Snapshot
	fields, err := c.snapshot(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Snapshot collection incomplete")
		fail(err)
	}
	if len(fields) > 0 {
		if err := c.stores.Info.SaveFields(ctx, fields); err != nil {
			log.WithError(err).Error("Failed to save snapshot")
			fail(fmt.Errorf("save snapshot: %w", err))
		} else {
			res.InfoCount = len(fields)
		}
	}

	// 2. Statements
	for _, stmt := range []contracts.StatementType{
		contracts.StatementIncome, contracts.StatementBalance, contracts.StatementCashFlow,
	} {
		items, err := c.vendor.Statements(ctx, id, stmt)
		if err != nil {
			log.WithError(err).WithField("statement", stmt).Error("Failed to fetch statement")
			fail(fmt.Errorf("fetch %s: %w", stmt, err))
			continue
		}
		inserted, err := c.stores.Statements.SaveItems(ctx, items)
		if err != nil {
			log.WithError(err).WithField("statement", stmt).Error("Failed to save statement")
			fail(fmt.Errorf("save %s: %w", stmt, err))
			continue
		}
		res.StatementCount += inserted
	}

	// 3. Prices
	n, err := c.collectPrices(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to collect prices")
		fail(err)
	}
	res.PriceCount = n

	log.WithFields(map[string]interface{}{
		"statements": res.StatementCount,
		"info":       res.InfoCount,
		"prices":     res.PriceCount,
		"ok":         res.Error == nil,
	}).Info("Entity collection completed")
	return res
}

// snapshot builds today's info rows. The live quote, when available, overrides the vendor price.
func (c *Collector) snapshot(ctx context.Context, id string) ([]contracts.RawInfoField, error) {
	price, quoteErr := c.vendor.Quote(ctx, id)

	var live *yahoo.Quote
	if c.live != nil {
		q, err := c.live.Quote(ctx, id)
		if err != nil {
			c.logger.WithEntity(id).WithError(err).Debug("Live quote unavailable")
		} else {
			live = &q
			price = q.Price
			quoteErr = nil
		}
	}

	overview, overviewErr := c.vendor.Overview(ctx, id)

	today := c.now()
	fields := alphavantage.InfoFields(id, today, price, overview)
	if live != nil {
		fields = mergeFields(fields, live.InfoFields(id, today))
	}

	var errs []error
	if quoteErr != nil {
		errs = append(errs, fmt.Errorf("quote: %w", quoteErr))
	}
	if overviewErr != nil {
		errs = append(errs, fmt.Errorf("overview: %w", overviewErr))
	}
	return fields, errors.Join(errs...)
}

// mergeFields appends extra, replacing base rows with the same key
func mergeFields(base, extra []contracts.RawInfoField) []contracts.RawInfoField {
	idx := make(map[string]int, len(base))
	for i, f := range base {
		idx[f.Key] = i
	}
	for _, f := range extra {
		if i, ok := idx[f.Key]; ok {
			base[i] = f
			continue
		}
		idx[f.Key] = len(base)
		base = append(base, f)
	}
	return base
}

// collectPrices pulls the full history once, then only the compact window
func (c *Collector) collectPrices(ctx context.Context, id string) (int, error) {
	latest, err := c.stores.Prices.GetLatestDate(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("latest price date: %w", err)
	}

	bars, err := c.vendor.DailyAdjusted(ctx, id, latest.IsZero())
	if err != nil {
		return 0, fmt.Errorf("fetch prices: %w", err)
	}

	if !latest.IsZero() {
		// keep the last stored day so a revised close is refreshed
		fresh := bars[:0]
		for _, b := range bars {
			if !b.Date.Before(latest) {
				fresh = append(fresh, b)
			}
		}
		bars = fresh
	}

	if err := c.stores.Prices.SaveBatch(ctx, id, bars); err != nil {
		return 0, fmt.Errorf("save prices: %w", err)
	}
	return len(bars), nil
}

// CollectAll collects every symbol through a worker pool
func (c *Collector) CollectAll(ctx context.Context, symbols []string, cfg Config) []FetchResult {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol_count": len(symbols),
		"workers":      workers,
	}).Info("Starting collection")

	resultCh := make(chan FetchResult, len(symbols))
	symbolCh := make(chan string, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range symbolCh {
				if err := ctx.Err(); err != nil {
					resultCh <- FetchResult{EntityID: strings.ToUpper(symbol), Error: err}
					continue
				}
				resultCh <- c.CollectEntity(ctx, symbol)
			}
		}()
	}

	for _, s := range symbols {
		symbolCh <- s
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]FetchResult, 0, len(symbols))
	failCount := 0
	for r := range resultCh {
		results = append(results, r)
		if r.Error != nil {
			failCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": len(results) - failCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Collection completed")

	return results
}

// RefreshFactors downloads the factor library and upserts every month
// ⭐ SSOT: Fama-French 팩터 수집은 이 함수에서만
func (c *Collector) RefreshFactors(ctx context.Context) (int, error) {
	if c.factors == nil {
		return 0, fmt.Errorf("factor source not configured")
	}

	obs, err := c.factors.FetchMonthly(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch factors: %w", err)
	}
	if err := c.stores.Factors.SaveBatch(ctx, obs); err != nil {
		return 0, fmt.Errorf("save factors: %w", err)
	}

	c.logger.WithField("months", len(obs)).Info("Saved factor months")
	return len(obs), nil
}
