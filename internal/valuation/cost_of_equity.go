package valuation

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// minFactorObservations is the smallest overlap that leaves one degree of freedom
const minFactorObservations = 5

// FactorLoadings are the fitted exposures to the three factors
type FactorLoadings struct {
	Alpha float64 `json:"alpha"`
	MktRF float64 `json:"mkt_rf"`
	SMB   float64 `json:"smb"`
	HML   float64 `json:"hml"`
}

// CostOfEquityEstimate is the factor model result.
// Fallback is set whenever Rate is the configured default rather than a fitted value.
type CostOfEquityEstimate struct {
	Rate         float64        `json:"rate"`
	Loadings     FactorLoadings `json:"loadings"`
	Observations int            `json:"observations"`
	Fallback     bool           `json:"fallback"`
	Reason       string         `json:"reason,omitempty"`
}

// MonthlyReturn is one month of stock return
type MonthlyReturn struct {
	Month  time.Time
	Return float64
}

func monthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func barPrice(b contracts.PriceBar) (float64, bool) {
	for _, p := range []*float64{b.AdjClose, b.Close} {
		if p != nil && *p > 0 && !math.IsInf(*p, 0) {
			return *p, true
		}
	}
	return 0, false
}

// MonthlyReturns samples the last valid price of each calendar month and
// returns month over month changes. The first month has no return.
func MonthlyReturns(bars []contracts.PriceBar) []MonthlyReturn {
	type monthClose struct {
		month time.Time
		price float64
	}
	var closes []monthClose
	for _, b := range bars {
		p, ok := barPrice(b)
		if !ok {
			continue
		}
		m := monthKey(b.Date)
		if n := len(closes); n > 0 && closes[n-1].month.Equal(m) {
			closes[n-1].price = p
			continue
		}
		closes = append(closes, monthClose{month: m, price: p})
	}

	var out []MonthlyReturn
	for i := 1; i < len(closes); i++ {
		out = append(out, MonthlyReturn{
			Month:  closes[i].month,
			Return: closes[i].price/closes[i-1].price - 1,
		})
	}
	return out
}

// EstimateCostOfEquity fits excess stock returns on the three factors and prices
// the loadings with annualized factor means plus the annualized latest risk-free rate.
// Any missing input or degenerate fit returns fallbackRate with Fallback set.
func EstimateCostOfEquity(stock []MonthlyReturn, factors []contracts.FactorObservation, fallbackRate float64) CostOfEquityEstimate {
	fallback := func(reason string) CostOfEquityEstimate {
		return CostOfEquityEstimate{Rate: fallbackRate, Fallback: true, Reason: reason}
	}

	if len(factors) == 0 {
		return fallback("factor series unavailable")
	}
	if len(stock) == 0 {
		return fallback("price history unavailable")
	}

	byMonth := make(map[time.Time]contracts.FactorObservation, len(factors))
	for _, f := range factors {
		byMonth[monthKey(f.Month)] = f
	}

	var (
		y       []float64
		x       [][]float64
		matched []contracts.FactorObservation
	)
	for _, r := range stock {
		f, ok := byMonth[monthKey(r.Month)]
		if !ok {
			continue
		}
		y = append(y, r.Return-f.RF)
		x = append(x, []float64{f.MktRF, f.SMB, f.HML})
		matched = append(matched, f)
	}

	if len(matched) < minFactorObservations {
		return fallback(fmt.Sprintf("%d overlapping months", len(matched)))
	}

	fit, err := FitOLS(y, x)
	if err != nil {
		return fallback(err.Error())
	}

	var mkt, smb, hml float64
	for _, f := range matched {
		mkt += f.MktRF
		smb += f.SMB
		hml += f.HML
	}
	n := float64(len(matched))
	expMkt := mkt / n * 12
	expSMB := smb / n * 12
	expHML := hml / n * 12
	rf := matched[len(matched)-1].RF * 12

	rate := rf + fit.Betas[0]*expMkt + fit.Betas[1]*expSMB + fit.Betas[2]*expHML
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fallback("non-finite cost of equity")
	}

	return CostOfEquityEstimate{
		Rate: rate,
		Loadings: FactorLoadings{
			Alpha: fit.Intercept,
			MktRF: fit.Betas[0],
			SMB:   fit.Betas[1],
			HML:   fit.Betas[2],
		},
		Observations: fit.N,
	}
}
