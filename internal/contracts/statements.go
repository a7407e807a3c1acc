package contracts

import "time"

// StatementType names a financial statement
type StatementType string

const (
	StatementIncome   StatementType = "Income"
	StatementBalance  StatementType = "BalanceSheet"
	StatementCashFlow StatementType = "CashFlow"
)

// Valid reports whether the statement type is one of the three known statements
func (s StatementType) Valid() bool {
	switch s {
	case StatementIncome, StatementBalance, StatementCashFlow:
		return true
	}
	return false
}

// Canonical statement line item names shared by collectors and the ratio deriver
const (
	ItemTotalRevenue       = "Total Revenue"
	ItemGrossProfit        = "Gross Profit"
	ItemOperatingIncome    = "Operating Income"
	ItemNetIncome          = "Net Income"
	ItemCostOfRevenue      = "Cost Of Revenue"
	ItemInterestExpense    = "Interest Expense"
	ItemEBITDA             = "EBITDA"
	ItemBasicEPS           = "Basic EPS"
	ItemTotalAssets        = "Total Assets"
	ItemCurrentAssets      = "Current Assets"
	ItemCurrentLiabilities = "Current Liabilities"
	ItemTotalEquity        = "Total Equity"
	ItemInventory          = "Inventory"
	ItemAccountsReceivable = "Accounts Receivable"
	ItemCash               = "Cash And Cash Equivalents"
	ItemTotalDebt          = "Total Debt"
	ItemNetDebt            = "Net Debt"
	ItemInvestedCapital    = "Invested Capital"
	ItemOperatingCashFlow  = "Operating Cash Flow"
	ItemCapitalExpenditure = "Capital Expenditure"
	ItemFreeCashFlow       = "Free Cash Flow"
	ItemDividendsPaid      = "Cash Dividends Paid"
)

// RawStatementItem is one reported line item.
// Unique by (EntityID, Statement, Item, PeriodEnd); never updated once stored.
type RawStatementItem struct {
	EntityID  string        `json:"entity_id"`
	Statement StatementType `json:"statement_type"`
	Item      string        `json:"item"`
	PeriodEnd time.Time     `json:"period_end"`
	Value     float64       `json:"value"`
}

// RawInfoField is one vendor supplied "current/TTM" metric snapshot value
type RawInfoField struct {
	EntityID  string    `json:"entity_id"`
	QueryDate time.Time `json:"query_date"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
}

// Vendor snapshot keys read by the engine
const (
	InfoCurrentPrice      = "currentPrice"
	InfoCurrency          = "currency"
	InfoSharesOutstanding = "sharesOutstanding"
	InfoMarketCap         = "marketCap"
	InfoForwardEPS        = "forwardEps"
	InfoTrailingEPS       = "trailingEps"
	InfoLongName          = "longName"
	InfoSector            = "sector"
	InfoIndustry          = "industry"
)
