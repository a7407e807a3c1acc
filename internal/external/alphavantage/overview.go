package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
)

type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
}

// Quote returns the latest traded price
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	var resp globalQuoteResponse
	if err := c.query(ctx, "GLOBAL_QUOTE", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return 0, err
	}
	price, ok := parseNumber(resp.GlobalQuote["05. price"])
	if !ok || price <= 0 {
		return 0, fmt.Errorf("no quote for %s: %w", symbol, contracts.ErrMissingData)
	}
	return price, nil
}

// Overview returns the raw company overview fields
func (c *Client) Overview(ctx context.Context, symbol string) (map[string]string, error) {
	var resp map[string]string
	if err := c.query(ctx, "OVERVIEW", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("no overview for %s: %w", symbol, contracts.ErrMissingData)
	}
	return resp, nil
}

// overviewKeys maps overview fields to snapshot keys
var overviewKeys = map[string]string{
	"Symbol":                     "symbol",
	"Name":                       contracts.InfoLongName,
	"Industry":                   contracts.InfoIndustry,
	"Sector":                     contracts.InfoSector,
	"Currency":                   contracts.InfoCurrency,
	"PERatio":                    "trailingPE",
	"ForwardPE":                  "forwardPE",
	"PEGRatio":                   "trailingPegRatio",
	"PriceToBookRatio":           "priceToBook",
	"DividendYield":              "dividendYield",
	"EPS":                        contracts.InfoTrailingEPS,
	"ProfitMargin":               "profitMargins",
	"OperatingMarginTTM":         "operatingMargins",
	"ReturnOnEquityTTM":          "returnOnEquity",
	"ReturnOnAssetsTTM":          "returnOnAssets",
	"MarketCapitalization":       contracts.InfoMarketCap,
	"SharesOutstanding":          contracts.InfoSharesOutstanding,
	"QuarterlyRevenueGrowthYOY":  "revenueGrowth",
	"QuarterlyEarningsGrowthYOY": "earningsGrowth",
	"Beta":                       "beta",
}

// InfoFields builds the snapshot rows of one query date from a quote and an overview.
// Placeholder values are skipped. grossMargins and forwardEps are derived when their inputs exist.
func InfoFields(entityID string, queryDate time.Time, price float64, overview map[string]string) []contracts.RawInfoField {
	day := time.Date(queryDate.Year(), queryDate.Month(), queryDate.Day(), 0, 0, 0, 0, time.UTC)
	var out []contracts.RawInfoField
	add := func(key, value string) {
		out = append(out, contracts.RawInfoField{EntityID: entityID, QueryDate: day, Key: key, Value: value})
	}

	if price > 0 {
		add(contracts.InfoCurrentPrice, formatFloat(price))
	}

	for field, key := range overviewKeys {
		raw, ok := overview[field]
		if !ok {
			continue
		}
		v := strings.TrimSpace(raw)
		switch strings.ToLower(v) {
		case "", "none", "null", "-":
			continue
		}
		add(key, v)
	}

	revenue, hasRevenue := parseNumber(overview["RevenueTTM"])
	gross, hasGross := parseNumber(overview["GrossProfitTTM"])
	if hasRevenue && hasGross && revenue != 0 {
		add("grossMargins", formatFloat(gross/revenue))
	}

	if fpe, ok := parseNumber(overview["ForwardPE"]); ok && fpe > 0 && price > 0 {
		add(contracts.InfoForwardEPS, formatFloat(price/fpe))
	}

	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
