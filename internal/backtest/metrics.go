package backtest

import (
	"fmt"
	"math"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// TradingDaysPerYear annualizes daily statistics
const TradingDaysPerYear = 252

// Summarize computes total return, CAGR, Sharpe ratio and max drawdown of a daily return series.
// riskFree is an annual rate. An empty series (a single price) is a flat zero summary.
func Summarize(returns contracts.ReturnSeries, riskFree float64) (*contracts.PerformanceSummary, error) {
	d := len(returns)
	if d == 0 {
		return &contracts.PerformanceSummary{}, nil
	}
	r := returns.Values()

	s := &contracts.PerformanceSummary{
		TotalReturn: TotalReturn(r),
		TradingDays: d,
	}
	s.CAGR = CAGR(s.TotalReturn, d)
	s.SharpeRatio = SharpeRatio(r, riskFree)
	s.MaxDrawdown = MaxDrawdown(r)

	for _, v := range []float64{s.TotalReturn, s.CAGR, s.SharpeRatio, s.MaxDrawdown} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite performance metric: %w", contracts.ErrNumericGuard)
		}
	}
	return s, nil
}

// TotalReturn compounds the returns: Π(1+r) − 1
func TotalReturn(r []float64) float64 {
	g := 1.0
	for _, v := range r {
		g *= 1 + v
	}
	return g - 1
}

// CAGR annualizes a total return earned over tradingDays days. Zero days is 0.
func CAGR(totalReturn float64, tradingDays int) float64 {
	if tradingDays <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, float64(TradingDaysPerYear)/float64(tradingDays)) - 1
}

// SharpeRatio is the annualized mean excess return over annualized sample volatility.
// Zero volatility gives 0.
func SharpeRatio(r []float64, riskFree float64) float64 {
	sd := sampleStdDev(r)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	daily := riskFree / TradingDaysPerYear
	excess := 0.0
	for _, v := range r {
		excess += v - daily
	}
	excess /= float64(len(r))
	return excess * TradingDaysPerYear / (sd * math.Sqrt(TradingDaysPerYear))
}

// MaxDrawdown is the most negative cumulative/peak − 1, never positive
func MaxDrawdown(r []float64) float64 {
	if len(r) == 0 {
		return 0
	}
	cum := 1.0
	peak := math.Inf(-1)
	worst := 0.0
	for _, v := range r {
		cum *= 1 + v
		if cum > peak {
			peak = cum
		}
		if dd := cum/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

// sampleStdDev uses n−1 in the denominator; fewer than two observations or a constant series is 0
func sampleStdDev(r []float64) float64 {
	n := len(r)
	if n < 2 {
		return 0
	}
	mean := 0.0
	constant := true
	for _, v := range r {
		mean += v
		constant = constant && v == r[0]
	}
	if constant {
		// the rounded mean of equal values can differ from them by an ulp
		return 0
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range r {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(n - 1)
	return math.Sqrt(variance)
}
