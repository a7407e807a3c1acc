package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// PriceColumn names the bar field a series was read from
type PriceColumn string

const (
	ColumnAdjClose PriceColumn = "adj_close"
	ColumnClose    PriceColumn = "close"
)

// PricePoint is one valid price
type PricePoint struct {
	Date  time.Time
	Price float64
}

func validPrice(p *float64) bool {
	return p != nil && *p > 0 && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

// ResolvePriceColumn prefers the adjusted close and falls back to the close.
// The column is chosen once for the whole table; rows without a valid price in
// that column are dropped.
func ResolvePriceColumn(bars []contracts.PriceBar) ([]PricePoint, PriceColumn, error) {
	pick := func(b contracts.PriceBar) *float64 { return b.AdjClose }
	col := ColumnAdjClose

	if !hasColumn(bars, pick) {
		pick = func(b contracts.PriceBar) *float64 { return b.Close }
		col = ColumnClose
		if !hasColumn(bars, pick) {
			return nil, "", fmt.Errorf("no adjusted close or close prices: %w", contracts.ErrMissingData)
		}
	}

	points := make([]PricePoint, 0, len(bars))
	for _, b := range bars {
		if p := pick(b); validPrice(p) {
			points = append(points, PricePoint{Date: b.Date, Price: *p})
		}
	}
	return points, col, nil
}

func hasColumn(bars []contracts.PriceBar, pick func(contracts.PriceBar) *float64) bool {
	for _, b := range bars {
		if validPrice(pick(b)) {
			return true
		}
	}
	return false
}

// Returns is the percent change between consecutive prices; the first date has no return
func Returns(points []PricePoint) contracts.ReturnSeries {
	if len(points) < 2 {
		return contracts.ReturnSeries{}
	}
	out := make(contracts.ReturnSeries, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		out = append(out, contracts.ReturnPoint{
			Date:   points[i].Date,
			Return: points[i].Price/points[i-1].Price - 1,
		})
	}
	return out
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// AlignToDates reindexes a series onto the given dates, carrying the last known
// price forward. Dates before the first available price are dropped.
func AlignToDates(points []PricePoint, dates []time.Time) []PricePoint {
	byDay := make(map[string]float64, len(points))
	for _, p := range points {
		byDay[dayKey(p.Date)] = p.Price
	}

	var (
		out  []PricePoint
		last float64
		seen bool
	)
	for _, d := range dates {
		if p, ok := byDay[dayKey(d)]; ok {
			last, seen = p, true
		}
		if seen {
			out = append(out, PricePoint{Date: d, Price: last})
		}
	}
	return out
}

func dates(points []PricePoint) []time.Time {
	out := make([]time.Time, len(points))
	for i, p := range points {
		out[i] = p.Date
	}
	return out
}
