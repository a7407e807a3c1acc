package valuation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/internal/fundamentals"
	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/logger"
	"github.com/wonny/finlens/backend/pkg/redis"
)

// Service runs the DCF valuation for one entity on demand
// ⭐ SSOT: 내재가치 평가는 여기서만
type Service struct {
	statements contracts.StatementSource
	info       contracts.InfoSnapshotSource
	prices     contracts.PriceSource
	factors    contracts.FactorSource
	cache      contracts.ResultCache
	cfg        config.ValuationConfig
	logger     *logger.Logger
	now        func() time.Time
}

// NewService creates a valuation service. cache may be nil.
func NewService(
	statements contracts.StatementSource,
	info contracts.InfoSnapshotSource,
	prices contracts.PriceSource,
	factors contracts.FactorSource,
	cache contracts.ResultCache,
	cfg config.ValuationConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		statements: statements,
		info:       info,
		prices:     prices,
		factors:    factors,
		cache:      cache,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// ValueEntity estimates fair value per share. Missing or degenerate inputs
// wrap ErrInsufficientData; storage and context errors are returned as is.
func (s *Service) ValueEntity(ctx context.Context, entityID string) (*contracts.ValuationResult, error) {
	log := s.logger.WithEntity(entityID)
	key := redis.ValuationKey(entityID, s.now())

	if s.cache != nil {
		var cached contracts.ValuationResult
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.WithError(err).Warn("Valuation cache read failed")
		} else if hit {
			log.Debug("Valuation cache hit")
			return &cached, nil
		}
	}

	result, err := s.compute(ctx, entityID)
	if err != nil {
		// absent or degenerate data is insufficient; storage and context errors pass through
		if !errors.Is(err, contracts.ErrInsufficientData) &&
			(errors.Is(err, contracts.ErrMissingData) || errors.Is(err, contracts.ErrNumericGuard)) {
			err = fmt.Errorf("%w: %w", contracts.ErrInsufficientData, err)
		}
		log.WithError(err).Warn("Valuation failed")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cfg.CacheTTL); err != nil {
			log.WithError(err).Warn("Valuation cache write failed")
		}
	}

	log.WithFields(map[string]interface{}{
		"run_id":     result.RunID,
		"fair_value": result.FairValue,
		"price":      result.CurrentPrice,
		"wacc":       result.WACC,
		"verdict":    result.Verdict,
	}).Info("Valuation completed")

	return result, nil
}

func (s *Service) compute(ctx context.Context, entityID string) (*contracts.ValuationResult, error) {
	fields, err := s.info.GetLatestInfoSnapshot(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load info snapshot: %w", err)
	}
	snap := contracts.NewInfoSnapshot(fields)

	rawPrice, ok := snap.Float(contracts.InfoCurrentPrice)
	if !ok || rawPrice <= 0 {
		return nil, fmt.Errorf("current price unavailable: %w", contracts.ErrInsufficientData)
	}
	currency, _ := snap.String(contracts.InfoCurrency)
	price, currency := NormalizeQuote(rawPrice, currency)

	shares, ok := snap.Float(contracts.InfoSharesOutstanding)
	if !ok || shares <= 0 {
		return nil, fmt.Errorf("shares outstanding unavailable: %w", contracts.ErrInsufficientData)
	}

	items, err := s.statements.GetStatementItems(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load statements: %w", err)
	}
	frames := fundamentals.BuildFrames(items)

	coe := s.costOfEquity(ctx, entityID)

	proj, err := ProjectFCFPerShare(frames, snap, s.cfg.RecentFromYear)
	if err != nil {
		return nil, err
	}

	cs := LatestCapitalStructure(frames, shares*price)
	kd := CostOfDebt(cs, s.cfg.TaxRate, s.cfg.DefaultCostOfDebt)
	wacc := WACC(coe.Rate, kd, cs)

	dcf, err := DiscountCashFlows(DCFInput{
		FCFPerShare:     proj.PerShare,
		Shares:          shares,
		WACC:            wacc,
		Growth:          s.cfg.GrowthRate,
		TerminalGrowth:  s.cfg.TerminalGrowth,
		ProjectionYears: s.cfg.ProjectionYears,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrInsufficientData, err)
	}

	return &contracts.ValuationResult{
		RunID:                uuid.NewString(),
		EntityID:             entityID,
		Currency:             currency,
		CurrentPrice:         price,
		FairValue:            dcf.FairValuePerShare,
		Verdict:              DecideVerdict(dcf.FairValuePerShare, price),
		WACC:                 wacc,
		CostOfEquity:         coe.Rate,
		CostOfEquityFallback: coe.Fallback,
		CostOfEquityNote:     coe.Reason,
		CostOfDebt:           kd,
		ProjectedFCFPerShare: proj.PerShare,
		GrowthAssumption:     s.cfg.GrowthRate,
		TerminalGrowth:       s.cfg.TerminalGrowth,
		ProjectionYears:      s.cfg.ProjectionYears,
	}, nil
}

// costOfEquity never fails: source errors turn into the observable fallback
func (s *Service) costOfEquity(ctx context.Context, entityID string) CostOfEquityEstimate {
	to := s.now()
	from := to.AddDate(-s.cfg.LookbackYears, 0, 0)
	log := s.logger.WithEntity(entityID)

	factors, err := s.factors.GetFactorSeries(ctx, from, to)
	if err != nil {
		log.WithError(err).Warn("Factor series unavailable, using default cost of equity")
		return CostOfEquityEstimate{Rate: s.cfg.DefaultCostOfEquity, Fallback: true, Reason: "factor series unavailable"}
	}

	bars, err := s.prices.GetPriceSeries(ctx, entityID, from, to)
	if err != nil {
		log.WithError(err).Warn("Price history unavailable, using default cost of equity")
		return CostOfEquityEstimate{Rate: s.cfg.DefaultCostOfEquity, Fallback: true, Reason: "price history unavailable"}
	}

	est := EstimateCostOfEquity(MonthlyReturns(bars), factors, s.cfg.DefaultCostOfEquity)
	if est.Fallback {
		log.WithField("reason", est.Reason).Warn("Cost of equity fell back to default")
	} else {
		log.WithFields(map[string]interface{}{
			"coe":          est.Rate,
			"beta_mkt":     est.Loadings.MktRF,
			"observations": est.Observations,
		}).Debug("Cost of equity estimated")
	}
	return est
}
