package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/internal/contracts"
)

func ptr(v float64) *float64 { return &v }

func day(i int) time.Time { return day0.AddDate(0, 0, i) }

func TestResolvePriceColumn(t *testing.T) {
	t.Run("adjusted close preferred", func(t *testing.T) {
		pts, col, err := ResolvePriceColumn([]contracts.PriceBar{
			{Date: day(0), Close: ptr(10), AdjClose: ptr(9)},
			{Date: day(1), Close: ptr(11)},
			{Date: day(2), Close: ptr(12), AdjClose: ptr(11)},
		})
		require.NoError(t, err)
		assert.Equal(t, ColumnAdjClose, col)
		require.Len(t, pts, 2)
		assert.Equal(t, 9.0, pts[0].Price)
		assert.Equal(t, day(2), pts[1].Date)
	})

	t.Run("close fallback", func(t *testing.T) {
		pts, col, err := ResolvePriceColumn([]contracts.PriceBar{
			{Date: day(0), Close: ptr(10)},
			{Date: day(1), Close: ptr(0)},
			{Date: day(2), Close: ptr(12)},
		})
		require.NoError(t, err)
		assert.Equal(t, ColumnClose, col)
		assert.Len(t, pts, 2)
	})

	t.Run("no price column", func(t *testing.T) {
		_, _, err := ResolvePriceColumn([]contracts.PriceBar{{Date: day(0), Open: ptr(1)}})
		assert.ErrorIs(t, err, contracts.ErrMissingData)
	})
}

func TestReturns(t *testing.T) {
	r := Returns([]PricePoint{{day(0), 100}, {day(1), 110}, {day(2), 99}})
	require.Len(t, r, 2)
	assert.Equal(t, day(1), r[0].Date, "first date never has a return")
	assert.InDelta(t, 0.10, r[0].Return, 1e-12)
	assert.InDelta(t, -0.10, r[1].Return, 1e-12)

	assert.Empty(t, Returns([]PricePoint{{day(0), 100}}))
}

func TestAlignToDates(t *testing.T) {
	bench := []PricePoint{{day(1), 50}, {day(3), 55}, {day(9), 60}}
	got := AlignToDates(bench, []time.Time{day(0), day(1), day(2), day(3), day(4)})

	require.Len(t, got, 4)
	assert.Equal(t, day(1), got[0].Date)
	assert.Equal(t, 50.0, got[1].Price, "carried forward")
	assert.Equal(t, 55.0, got[2].Price)
	assert.Equal(t, 55.0, got[3].Price)
}

func TestAlignCurves(t *testing.T) {
	target := series(day0, 0.1, 0.1, 0.1)
	bench := contracts.ReturnSeries{{Date: day(2), Return: 0.5}}

	chart := AlignCurves(target, bench)
	require.Len(t, chart, 3)

	assert.InDelta(t, 1.1, chart[0].Target, 1e-12)
	assert.Equal(t, 1.0, chart[0].Benchmark, "leading gap reads 1.0")
	assert.InDelta(t, 1.5, chart[1].Benchmark, 1e-12)
	assert.InDelta(t, 1.5, chart[2].Benchmark, 1e-12, "forward filled")
	assert.InDelta(t, 1.331, chart[2].Target, 1e-12)

	for _, p := range AlignCurves(target, nil) {
		assert.Equal(t, 1.0, p.Benchmark)
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		period  string
		want    time.Time
		wantErr bool
	}{
		{period: "5y", want: time.Date(2019, 6, 15, 0, 0, 0, 0, time.UTC)},
		{period: "1y", want: time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)},
		{period: "6mo", want: time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)},
		{period: "5d", want: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{period: "ytd", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{period: "max", want: time.Time{}},
		{period: "0y", wantErr: true},
		{period: "forever", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := PeriodStart(tt.period, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
