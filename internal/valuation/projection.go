package valuation

import (
	"fmt"
	"math"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/internal/fundamentals"
)

// FCFProjection is the forward free cash flow per share and its inputs
type FCFProjection struct {
	PerShare       float64 `json:"per_share"`
	ConversionRate float64 `json:"conversion_rate"` // mean FCF / Net Income
	YearsUsed      []int   `json:"years_used"`
	EPS            float64 `json:"eps"`
	EPSSource      string  `json:"eps_source"`
}

// ProjectFCFPerShare scales the EPS estimate by the average FCF to net income
// conversion over fiscal years at or after recentFromYear.
// A non-positive projection is ErrInsufficientData.
func ProjectFCFPerShare(frames fundamentals.Frames, snap contracts.InfoSnapshot, recentFromYear int) (*FCFProjection, error) {
	proj := &FCFProjection{ConversionRate: 1.0}

	var sum float64
	for _, year := range frames.CashFlow.Years() {
		if year < recentFromYear {
			continue
		}
		ocf, ok := frames.CashFlow.Get(year, contracts.ItemOperatingCashFlow)
		if !ok {
			continue
		}
		capex, ok := frames.CashFlow.Get(year, contracts.ItemCapitalExpenditure)
		if !ok {
			continue
		}
		ni, ok := frames.Income.Get(year, contracts.ItemNetIncome)
		if !ok || ni == 0 {
			continue
		}
		r := (ocf - math.Abs(capex)) / ni
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		sum += r
		proj.YearsUsed = append(proj.YearsUsed, year)
	}
	if len(proj.YearsUsed) > 0 {
		proj.ConversionRate = sum / float64(len(proj.YearsUsed))
	}

	// a zero forward estimate counts as missing
	for _, key := range []string{contracts.InfoForwardEPS, contracts.InfoTrailingEPS} {
		if eps, ok := snap.Float(key); ok && eps != 0 {
			proj.EPS = eps
			proj.EPSSource = key
			break
		}
	}
	if proj.EPSSource == "" {
		return nil, fmt.Errorf("no forward or trailing EPS: %w", contracts.ErrInsufficientData)
	}
	proj.PerShare = proj.EPS * proj.ConversionRate

	if !(proj.PerShare > 0) || math.IsInf(proj.PerShare, 0) {
		return nil, fmt.Errorf("projected FCF per share %.4f: %w", proj.PerShare, contracts.ErrInsufficientData)
	}
	return proj, nil
}
