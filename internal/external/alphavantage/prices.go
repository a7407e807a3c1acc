package alphavantage

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
)

type dailyAdjustedResponse struct {
	TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
}

// DailyAdjusted fetches the full daily history with adjusted closes, oldest first
func (c *Client) DailyAdjusted(ctx context.Context, symbol string, full bool) ([]contracts.PriceBar, error) {
	size := "compact"
	if full {
		size = "full"
	}

	var resp dailyAdjustedResponse
	params := url.Values{"symbol": {symbol}, "outputsize": {size}}
	if err := c.query(ctx, "TIME_SERIES_DAILY_ADJUSTED", params, &resp); err != nil {
		return nil, err
	}

	bars := ParseDailySeries(resp.TimeSeries)
	c.logger.WithFields(map[string]interface{}{
		"symbol": strings.ToUpper(symbol),
		"bars":   len(bars),
	}).Info("Fetched daily prices")
	return bars, nil
}

// ParseDailySeries converts the vendor's date keyed table into ordered bars
func ParseDailySeries(series map[string]map[string]string) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, 0, len(series))
	for day, row := range series {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		b := contracts.PriceBar{
			Date:     date,
			Open:     optional(row["1. open"]),
			High:     optional(row["2. high"]),
			Low:      optional(row["3. low"]),
			Close:    optional(row["4. close"]),
			AdjClose: optional(row["5. adjusted close"]),
		}
		if v, ok := parseNumber(row["6. volume"]); ok {
			b.Volume = int64(v)
		}
		bars = append(bars, b)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func optional(raw string) *float64 {
	v, ok := parseNumber(raw)
	if !ok {
		return nil
	}
	return &v
}
