package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// statementFunctions maps statement types to API functions
var statementFunctions = map[contracts.StatementType]string{
	contracts.StatementIncome:   "INCOME_STATEMENT",
	contracts.StatementBalance:  "BALANCE_SHEET",
	contracts.StatementCashFlow: "CASH_FLOW",
}

// itemNames maps vendor report fields onto canonical line item names
var itemNames = map[string]string{
	"totalRevenue":                          contracts.ItemTotalRevenue,
	"grossProfit":                           contracts.ItemGrossProfit,
	"operatingIncome":                       contracts.ItemOperatingIncome,
	"netIncome":                             contracts.ItemNetIncome,
	"costOfRevenue":                         contracts.ItemCostOfRevenue,
	"interestExpense":                       contracts.ItemInterestExpense,
	"ebitda":                                contracts.ItemEBITDA,
	"reportedEPS":                           contracts.ItemBasicEPS,
	"totalAssets":                           contracts.ItemTotalAssets,
	"totalCurrentAssets":                    contracts.ItemCurrentAssets,
	"totalCurrentLiabilities":               contracts.ItemCurrentLiabilities,
	"totalShareholderEquity":                contracts.ItemTotalEquity,
	"inventory":                             contracts.ItemInventory,
	"currentNetReceivables":                 contracts.ItemAccountsReceivable,
	"cashAndCashEquivalentsAtCarryingValue": contracts.ItemCash,
	"operatingCashflow":                     contracts.ItemOperatingCashFlow,
	"capitalExpenditures":                   contracts.ItemCapitalExpenditure,
	"dividendPayout":                        contracts.ItemDividendsPaid,
}

type statementResponse struct {
	Symbol        string              `json:"symbol"`
	AnnualReports []map[string]string `json:"annualReports"`
}

// Statements fetches the annual reports of one statement type as raw line items
func (c *Client) Statements(ctx context.Context, symbol string, stmt contracts.StatementType) ([]contracts.RawStatementItem, error) {
	function, ok := statementFunctions[stmt]
	if !ok {
		return nil, fmt.Errorf("unsupported statement type %q", stmt)
	}

	var resp statementResponse
	if err := c.query(ctx, function, url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}

	items := ParseAnnualReports(strings.ToUpper(symbol), stmt, resp.AnnualReports)
	c.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"statement": stmt,
		"reports":   len(resp.AnnualReports),
		"items":     len(items),
	}).Info("Fetched statements")
	return items, nil
}

// ParseAnnualReports maps vendor reports to canonical rows and adds derived items:
// Total Debt, Net Debt and Invested Capital on the balance sheet, Free Cash Flow on the cash flow.
// Absent vendor values produce no row.
func ParseAnnualReports(entityID string, stmt contracts.StatementType, reports []map[string]string) []contracts.RawStatementItem {
	var out []contracts.RawStatementItem

	for _, report := range reports {
		periodEnd, err := time.Parse("2006-01-02", report["fiscalDateEnding"])
		if err != nil {
			continue
		}
		add := func(item string, v float64) {
			out = append(out, contracts.RawStatementItem{
				EntityID:  entityID,
				Statement: stmt,
				Item:      item,
				PeriodEnd: periodEnd,
				Value:     v,
			})
		}

		for field, raw := range report {
			item, ok := itemNames[field]
			if !ok {
				continue
			}
			if v, ok := parseNumber(raw); ok {
				add(item, v)
			}
		}

		switch stmt {
		case contracts.StatementBalance:
			short, hasShort := parseNumber(report["shortTermDebt"])
			long, hasLong := parseNumber(report["longTermDebt"])
			if !hasShort && !hasLong {
				break
			}
			debt := short + long
			add(contracts.ItemTotalDebt, debt)

			cash, _ := parseNumber(report["cashAndCashEquivalentsAtCarryingValue"])
			add(contracts.ItemNetDebt, debt-cash)

			if equity, ok := parseNumber(report["totalShareholderEquity"]); ok {
				add(contracts.ItemInvestedCapital, equity+debt-cash)
			}

		case contracts.StatementCashFlow:
			ocf, hasOCF := parseNumber(report["operatingCashflow"])
			capex, hasCapex := parseNumber(report["capitalExpenditures"])
			if hasOCF && hasCapex {
				// capital expenditures are reported as a positive outflow
				add(contracts.ItemFreeCashFlow, ocf-capex)
			}
		}
	}

	return out
}
