package backtest

import (
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// ChartPoint is one date of the cumulative growth of 1 unit
type ChartPoint struct {
	Date      time.Time `json:"date"`
	Target    float64   `json:"target_cumulative"`
	Benchmark float64   `json:"benchmark_cumulative"`
}

// Cumulative compounds a return series into growth of 1 unit
func Cumulative(returns contracts.ReturnSeries) []contracts.ReturnPoint {
	out := make([]contracts.ReturnPoint, len(returns))
	g := 1.0
	for i, r := range returns {
		g *= 1 + r.Return
		out[i] = contracts.ReturnPoint{Date: r.Date, Return: g}
	}
	return out
}

// AlignCurves lays the benchmark curve onto the target's dates.
// Missing benchmark values carry the previous one forward; before the first
// benchmark value the curve reads 1.0.
func AlignCurves(target, benchmark contracts.ReturnSeries) []ChartPoint {
	tc := Cumulative(target)
	bc := make(map[string]float64, len(benchmark))
	for _, p := range Cumulative(benchmark) {
		bc[dayKey(p.Date)] = p.Return
	}

	out := make([]ChartPoint, len(tc))
	last := 1.0
	for i, p := range tc {
		if v, ok := bc[dayKey(p.Date)]; ok {
			last = v
		}
		out[i] = ChartPoint{Date: p.Date, Target: p.Return, Benchmark: last}
	}
	return out
}
