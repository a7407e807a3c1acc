package contracts

// Verdict is the qualitative outcome of a valuation
type Verdict string

const (
	VerdictUndervalued Verdict = "undervalued"
	VerdictOvervalued  Verdict = "overvalued"
)

// ValuationResult is an on-demand DCF estimate. It is not persisted.
type ValuationResult struct {
	RunID                string  `json:"run_id"`
	EntityID             string  `json:"entity_id"`
	Currency             string  `json:"currency"`
	CurrentPrice         float64 `json:"current_price"`
	FairValue            float64 `json:"fair_value"`
	Verdict              Verdict `json:"verdict"`
	WACC                 float64 `json:"wacc"`
	CostOfEquity         float64 `json:"cost_of_equity"`
	CostOfEquityFallback bool    `json:"cost_of_equity_fallback"`
	CostOfEquityNote     string  `json:"cost_of_equity_note,omitempty"`
	CostOfDebt           float64 `json:"cost_of_debt"`
	ProjectedFCFPerShare float64 `json:"projected_fcf_per_share"`
	GrowthAssumption     float64 `json:"growth_assumption"`
	TerminalGrowth       float64 `json:"terminal_growth"`
	ProjectionYears      int     `json:"projection_years"`
}
