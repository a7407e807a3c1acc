package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/httputil"
	"github.com/wonny/finlens/backend/pkg/logger"
)

var fixtures = map[string]string{
	"GLOBAL_QUOTE": `{"Global Quote": {"01. symbol": "IBM", "05. price": "182.5000"}}`,
	"OVERVIEW": `{"Symbol": "IBM", "Name": "International Business Machines", "Currency": "USD",
		"Sector": "TECHNOLOGY", "EPS": "8.14", "ForwardPE": "18.25", "ProfitMargin": "0.12",
		"ReturnOnEquityTTM": "0.35", "SharesOutstanding": "918000000", "DividendYield": "None",
		"RevenueTTM": "62000000000", "GrossProfitTTM": "34100000000"}`,
	"BALANCE_SHEET": `{"symbol": "IBM", "annualReports": [
		{"fiscalDateEnding": "2023-12-31", "totalShareholderEquity": "22000", "shortTermDebt": "6000",
		 "longTermDebt": "50000", "cashAndCashEquivalentsAtCarryingValue": "13000", "inventory": "None"}]}`,
	"CASH_FLOW": `{"symbol": "IBM", "annualReports": [
		{"fiscalDateEnding": "2023-12-31", "operatingCashflow": "13900", "capitalExpenditures": "1800"}]}`,
	"TIME_SERIES_DAILY_ADJUSTED": `{"Time Series (Daily)": {
		"2024-01-03": {"1. open": "10", "4. close": "11", "5. adjusted close": "10.5", "6. volume": "100"},
		"2024-01-02": {"1. open": "9", "4. close": "10", "5. adjusted close": "9.5", "6. volume": "200"}}}`,
	"SYMBOL_SEARCH": `{"bestMatches": [{"1. symbol": "TSCO.LON", "2. name": "Tesco PLC", "3. type": "Equity",
		"4. region": "United Kingdom", "8. currency": "GBX"}]}`,
	"INCOME_STATEMENT": `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "demo", r.URL.Query().Get("apikey"))
		body, ok := fixtures[r.URL.Query().Get("function")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := config.AlphaVantageConfig{APIKey: "demo", BaseURL: srv.URL}
	return NewClient(cfg, httputil.New(logger.Nop()).DisableRetry(), logger.Nop())
}

func TestClient_Quote(t *testing.T) {
	price, err := newTestClient(t).Quote(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, 182.5, price)
}

func TestClient_ThrottleNoteIsError(t *testing.T) {
	_, err := newTestClient(t).Statements(context.Background(), "IBM", contracts.StatementIncome)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "note")
}

func TestClient_MissingAPIKey(t *testing.T) {
	c := NewClient(config.AlphaVantageConfig{BaseURL: "http://127.0.0.1:1"}, httputil.New(logger.Nop()), logger.Nop())
	_, err := c.Quote(context.Background(), "IBM")
	assert.Error(t, err)
}

func itemValue(items []contracts.RawStatementItem, name string) (float64, bool) {
	for _, it := range items {
		if it.Item == name {
			return it.Value, true
		}
	}
	return 0, false
}

func TestClient_BalanceSheetDerivedItems(t *testing.T) {
	items, err := newTestClient(t).Statements(context.Background(), "ibm", contracts.StatementBalance)
	require.NoError(t, err)

	for _, it := range items {
		assert.Equal(t, "IBM", it.EntityID)
		assert.Equal(t, contracts.StatementBalance, it.Statement)
	}

	debt, ok := itemValue(items, contracts.ItemTotalDebt)
	require.True(t, ok)
	assert.Equal(t, 56000.0, debt)

	net, _ := itemValue(items, contracts.ItemNetDebt)
	assert.Equal(t, 43000.0, net)

	ic, _ := itemValue(items, contracts.ItemInvestedCapital)
	assert.Equal(t, 65000.0, ic)

	_, ok = itemValue(items, contracts.ItemInventory)
	assert.False(t, ok, "None is absent, not zero")
}

func TestClient_CashFlowFreeCashFlow(t *testing.T) {
	items, err := newTestClient(t).Statements(context.Background(), "IBM", contracts.StatementCashFlow)
	require.NoError(t, err)

	fcf, ok := itemValue(items, contracts.ItemFreeCashFlow)
	require.True(t, ok)
	assert.Equal(t, 12100.0, fcf)
}

func TestClient_DailyAdjusted(t *testing.T) {
	bars, err := newTestClient(t).DailyAdjusted(context.Background(), "IBM", true)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	require.NotNil(t, bars[0].AdjClose)
	assert.Equal(t, 9.5, *bars[0].AdjClose)
	assert.Nil(t, bars[0].High)
	assert.Equal(t, int64(100), bars[1].Volume)
}

func TestClient_SearchSymbol(t *testing.T) {
	matches, err := newTestClient(t).SearchSymbol(context.Background(), "tesco")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "TSCO.LON", matches[0].Symbol)
	assert.Equal(t, "GBX", matches[0].Currency)
}

func TestInfoFields(t *testing.T) {
	c := newTestClient(t)
	overview, err := c.Overview(context.Background(), "IBM")
	require.NoError(t, err)

	fields := InfoFields("IBM", time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC), 182.5, overview)
	byKey := make(map[string]string)
	for _, f := range fields {
		byKey[f.Key] = f.Value
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), f.QueryDate)
	}

	assert.Equal(t, "182.5", byKey[contracts.InfoCurrentPrice])
	assert.Equal(t, "8.14", byKey[contracts.InfoTrailingEPS])
	assert.Equal(t, "0.35", byKey["returnOnEquity"])
	assert.Equal(t, "918000000", byKey[contracts.InfoSharesOutstanding])
	assert.Equal(t, "0.55", byKey["grossMargins"])
	assert.Equal(t, "10", byKey[contracts.InfoForwardEPS])
	_, ok := byKey["dividendYield"]
	assert.False(t, ok)
}
