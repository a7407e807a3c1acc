package valuation

import (
	"fmt"
	"math"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/internal/fundamentals"
)

// CapitalStructure holds the latest balance sheet and market inputs of the WACC
type CapitalStructure struct {
	InterestExpense float64
	HasInterest     bool
	TotalDebt       float64
	HasDebt         bool
	MarketCap       float64
}

// LatestCapitalStructure reads interest expense and total debt from the most recent fiscal year of each frame
func LatestCapitalStructure(frames fundamentals.Frames, marketCap float64) CapitalStructure {
	cs := CapitalStructure{MarketCap: marketCap}
	if y, ok := frames.Income.LatestYear(); ok {
		cs.InterestExpense, cs.HasInterest = frames.Income.Get(y, contracts.ItemInterestExpense)
	}
	if y, ok := frames.Balance.LatestYear(); ok {
		cs.TotalDebt, cs.HasDebt = frames.Balance.Get(y, contracts.ItemTotalDebt)
	}
	return cs
}

// CostOfDebt is after-tax |interest| / debt, or defaultRate when debt is not positive or interest is missing
func CostOfDebt(cs CapitalStructure, taxRate, defaultRate float64) float64 {
	if !cs.HasDebt || !cs.HasInterest || cs.TotalDebt <= 0 {
		return defaultRate
	}
	kd := math.Abs(cs.InterestExpense) / cs.TotalDebt * (1 - taxRate)
	if math.IsNaN(kd) || math.IsInf(kd, 0) {
		return defaultRate
	}
	return kd
}

// WACC weights equity and debt costs by market value.
// Without a positive market cap the rate collapses to the cost of equity.
func WACC(costOfEquity, costOfDebt float64, cs CapitalStructure) float64 {
	if !(cs.MarketCap > 0) {
		return costOfEquity
	}
	debt := 0.0
	if cs.HasDebt && cs.TotalDebt > 0 {
		debt = cs.TotalDebt
	}
	total := cs.MarketCap + debt
	return cs.MarketCap/total*costOfEquity + debt/total*costOfDebt
}

// DCFInput parameterizes a discounted cash flow run
type DCFInput struct {
	FCFPerShare     float64
	Shares          float64
	WACC            float64
	Growth          float64
	TerminalGrowth  float64
	ProjectionYears int
}

// DCFOutput holds intermediate values for display and tests
type DCFOutput struct {
	ProjectedFlows     []float64 `json:"projected_flows"`
	DiscountedFlows    float64   `json:"discounted_flows"`
	TerminalValue      float64   `json:"terminal_value"`
	DiscountedTerminal float64   `json:"discounted_terminal"`
	FairValuePerShare  float64   `json:"fair_value_per_share"`
}

// DiscountCashFlows projects FCF for N years, adds a Gordon growth terminal value
// and returns fair value per share. WACC must exceed terminal growth.
func DiscountCashFlows(in DCFInput) (*DCFOutput, error) {
	if in.ProjectionYears < 1 {
		return nil, fmt.Errorf("projection years %d: %w", in.ProjectionYears, contracts.ErrNumericGuard)
	}
	if !(in.Shares > 0) {
		return nil, fmt.Errorf("shares outstanding unavailable: %w", contracts.ErrInsufficientData)
	}
	if !(in.WACC > in.TerminalGrowth) {
		return nil, fmt.Errorf("wacc %.4f <= terminal growth %.4f: %w", in.WACC, in.TerminalGrowth, contracts.ErrNumericGuard)
	}
	if in.WACC <= -1 {
		return nil, fmt.Errorf("wacc %.4f: %w", in.WACC, contracts.ErrNumericGuard)
	}

	out := &DCFOutput{ProjectedFlows: make([]float64, in.ProjectionYears)}
	base := in.FCFPerShare * in.Shares
	for i := 1; i <= in.ProjectionYears; i++ {
		flow := base * math.Pow(1+in.Growth, float64(i))
		out.ProjectedFlows[i-1] = flow
		out.DiscountedFlows += flow / math.Pow(1+in.WACC, float64(i))
	}

	last := out.ProjectedFlows[in.ProjectionYears-1]
	out.TerminalValue = last * (1 + in.TerminalGrowth) / (in.WACC - in.TerminalGrowth)
	out.DiscountedTerminal = out.TerminalValue / math.Pow(1+in.WACC, float64(in.ProjectionYears))
	out.FairValuePerShare = (out.DiscountedFlows + out.DiscountedTerminal) / in.Shares

	if math.IsNaN(out.FairValuePerShare) || math.IsInf(out.FairValuePerShare, 0) {
		return nil, fmt.Errorf("fair value: %w", contracts.ErrNumericGuard)
	}
	return out, nil
}

// DecideVerdict is a strict one-sided comparison: equality is overvalued
func DecideVerdict(fairValue, currentPrice float64) contracts.Verdict {
	if fairValue > currentPrice {
		return contracts.VerdictUndervalued
	}
	return contracts.VerdictOvervalued
}
