package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/finlens/backend/internal/backtest"
	"github.com/wonny/finlens/backend/internal/external/alphavantage"
	"github.com/wonny/finlens/backend/internal/external/famafrench"
	"github.com/wonny/finlens/backend/internal/external/yahoo"
	"github.com/wonny/finlens/backend/internal/fundamentals"
	"github.com/wonny/finlens/backend/internal/s0_data"
	"github.com/wonny/finlens/backend/internal/s0_data/collector"
	"github.com/wonny/finlens/backend/internal/valuation"
	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/database"
	"github.com/wonny/finlens/backend/pkg/httputil"
	"github.com/wonny/finlens/backend/pkg/logger"
	"github.com/wonny/finlens/backend/pkg/redis"
)

// app holds the shared dependencies of every command
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	repo  *s0_data.Repository
	redis *redis.Client
	cache *redis.Cache
}

// newApp loads config, opens the database and, when enabled, Redis.
// A Redis failure degrades to no caching.
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if envFlag != "" {
		cfg.Env = envFlag
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		rdb = redis.Disabled()
	}

	return &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		repo:  s0_data.NewRepository(db.Pool),
		redis: rdb,
		cache: redis.NewCache(rdb, "finlens"),
	}, nil
}

func (a *app) Close() {
	_ = a.redis.Close()
	a.db.Close()
}

func (a *app) collector() *collector.Collector {
	avHTTP := httputil.New(a.log).WithRateLimit(a.cfg.AlphaVantage.RequestsPerMinute)
	av := alphavantage.NewClient(a.cfg.AlphaVantage, avHTTP, a.log)
	ff := famafrench.NewClient(a.cfg.FamaFrench, httputil.New(a.log).WithTimeout(60*time.Second), a.log)
	live := yahoo.NewClient(10*time.Second, a.log)

	return collector.NewCollector(av, live, ff, collector.StoresFrom(a.repo), a.log)
}

func (a *app) ratioService() *fundamentals.Service {
	return fundamentals.NewService(a.repo.Statements, a.repo.Info, a.repo.Ratios, a.repo.Ratios, a.log)
}

func (a *app) valuationService() *valuation.Service {
	return valuation.NewService(
		a.repo.Statements,
		a.repo.Info,
		a.repo.Prices,
		a.repo.Factors,
		a.cache,
		a.cfg.Valuation,
		a.log,
	)
}

func (a *app) backtestEngine() *backtest.Engine {
	return backtest.NewEngine(a.repo.Prices, a.cache, a.cfg.Backtest, a.log)
}

// commandContext bounds one-shot commands
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Minute)
}
