package contracts

import "time"

// PriceBar is one row of an OHLCV table. Close and AdjClose are optional
// so the backtest can pick the best available price column.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     *float64  `json:"open,omitempty"`
	High     *float64  `json:"high,omitempty"`
	Low      *float64  `json:"low,omitempty"`
	Close    *float64  `json:"close,omitempty"`
	AdjClose *float64  `json:"adj_close,omitempty"`
	Volume   int64     `json:"volume"`
}

// ReturnPoint is one period return
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// ReturnSeries is ordered by date and never contains the first price date
type ReturnSeries []ReturnPoint

// Values returns the bare returns in order
func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Return
	}
	return out
}

// PerformanceSummary holds the statistics of one return series
type PerformanceSummary struct {
	TotalReturn float64 `json:"total_return"`
	CAGR        float64 `json:"cagr"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	TradingDays int     `json:"trading_days"`
}

// FactorObservation is one month of three-factor data, as decimal fractions
type FactorObservation struct {
	Month time.Time `json:"month"`
	MktRF float64   `json:"mkt_rf"`
	SMB   float64   `json:"smb"`
	HML   float64   `json:"hml"`
	RF    float64   `json:"rf"`
}
