package fundamentals

import (
	"github.com/wonny/finlens/backend/internal/contracts"
)

// Canonical ratio names
const (
	RatioGrossMargin         = "Gross Margin"
	RatioOperatingMargin     = "Operating Margin"
	RatioNetProfitMargin     = "Net Profit Margin"
	RatioReturnOnEquity      = "Return on Equity"
	RatioROIC                = "ROIC"
	RatioDebtToEquity        = "Debt-to-Equity"
	RatioCurrentRatio        = "Current Ratio"
	RatioInterestCoverage    = "Interest Coverage"
	RatioNetDebtToEBITDA     = "Net Debt / EBITDA"
	RatioAssetTurnover       = "Asset Turnover"
	RatioInventoryTurnover   = "Inventory Turnover"
	RatioReceivablesTurnover = "Receivables Turnover"
	RatioRevenueGrowth       = "Revenue Growth"
	RatioNetIncomeGrowth     = "Net Income Growth"
	RatioEPSGrowth           = "EPS Growth"
	RatioFCFGrowth           = "FCF Growth"
)

// operand names a statement line item together with accepted aliases
type operand struct {
	statement contracts.StatementType
	items     []string
}

func income(items ...string) operand {
	return operand{statement: contracts.StatementIncome, items: items}
}

func balance(items ...string) operand {
	return operand{statement: contracts.StatementBalance, items: items}
}

func cashflow(items ...string) operand {
	return operand{statement: contracts.StatementCashFlow, items: items}
}

var (
	opRevenue          = income(contracts.ItemTotalRevenue, "Revenue", "Operating Revenue")
	opGrossProfit      = income(contracts.ItemGrossProfit)
	opOperatingIncome  = income(contracts.ItemOperatingIncome, "EBIT")
	opNetIncome        = income(contracts.ItemNetIncome, "Net Income Common Stockholders")
	opCostOfRevenue    = income(contracts.ItemCostOfRevenue, "Cost Of Goods Sold")
	opInterestExpense  = income(contracts.ItemInterestExpense)
	opEBITDA           = income(contracts.ItemEBITDA, "Normalized EBITDA")
	opBasicEPS         = income(contracts.ItemBasicEPS, "Diluted EPS")
	opTotalEquity      = balance(contracts.ItemTotalEquity, "Total Equity Gross Minority Interest", "Stockholders Equity")
	opTotalDebt        = balance(contracts.ItemTotalDebt)
	opNetDebt          = balance(contracts.ItemNetDebt)
	opInvestedCapital  = balance(contracts.ItemInvestedCapital)
	opTotalAssets      = balance(contracts.ItemTotalAssets)
	opCurrentAssets    = balance(contracts.ItemCurrentAssets)
	opCurrentLiabs     = balance(contracts.ItemCurrentLiabilities)
	opInventory        = balance(contracts.ItemInventory)
	opReceivables      = balance(contracts.ItemAccountsReceivable, "Net Receivables")
	opOperatingCash    = cashflow(contracts.ItemOperatingCashFlow)
	opCapitalSpending  = cashflow(contracts.ItemCapitalExpenditure)
	opReportedFreeCash = cashflow(contracts.ItemFreeCashFlow)
)

// ratioKind selects the computation rule of a catalog entry
type ratioKind int

const (
	// kindQuotient: numerator / denominator, denominator strictly positive
	kindQuotient ratioKind = iota
	// kindGrowth: (current - previous) / |previous| with previous from Y-1, previous nonzero
	kindGrowth
)

// RatioDef is one row of the ratio catalog
type RatioDef struct {
	Name     string
	Category contracts.RatioCategory
	Formula  string

	kind        ratioKind
	numerator   operand
	denominator operand
	// metric is the growth subject; nil for quotients
	metric func(fr Frames, year int) (float64, bool)
	// frame whose Y-1 presence gates a growth ratio
	growthFrame contracts.StatementType
}

// Reconcilable reports whether the vendor override policy may replace this ratio.
// Growth ratios always come from the statements.
func (d RatioDef) Reconcilable() bool {
	return d.kind != kindGrowth
}

func quotient(name string, cat contracts.RatioCategory, formula string, num, den operand) RatioDef {
	return RatioDef{Name: name, Category: cat, Formula: formula, kind: kindQuotient, numerator: num, denominator: den}
}

func growth(name, formula string, frame contracts.StatementType, metric func(Frames, int) (float64, bool)) RatioDef {
	return RatioDef{Name: name, Category: contracts.CategoryGrowth, Formula: formula, kind: kindGrowth, metric: metric, growthFrame: frame}
}

func operandMetric(op operand) func(Frames, int) (float64, bool) {
	return func(fr Frames, year int) (float64, bool) {
		return fr.Frame(op.statement).GetAny(year, op.items...)
	}
}

// freeCashFlow prefers the reported item and otherwise derives OCF - |CapEx|
func freeCashFlow(fr Frames, year int) (float64, bool) {
	if v, ok := fr.CashFlow.GetAny(year, opReportedFreeCash.items...); ok {
		return v, true
	}
	ocf, ok := fr.CashFlow.GetAny(year, opOperatingCash.items...)
	if !ok {
		return 0, false
	}
	capex, ok := fr.CashFlow.GetAny(year, opCapitalSpending.items...)
	if !ok {
		return 0, false
	}
	return ocf - abs(capex), true
}

// Catalog is the exact ratio contract, in output order
var Catalog = []RatioDef{
	quotient(RatioGrossMargin, contracts.CategoryProfitability, "Gross Profit / Revenue", opGrossProfit, opRevenue),
	quotient(RatioOperatingMargin, contracts.CategoryProfitability, "Operating Income / Revenue", opOperatingIncome, opRevenue),
	quotient(RatioNetProfitMargin, contracts.CategoryProfitability, "Net Income / Revenue", opNetIncome, opRevenue),
	quotient(RatioReturnOnEquity, contracts.CategoryProfitability, "Net Income / Total Equity", opNetIncome, opTotalEquity),
	quotient(RatioROIC, contracts.CategoryProfitability, "Net Income / Invested Capital", opNetIncome, opInvestedCapital),

	quotient(RatioDebtToEquity, contracts.CategoryLeverage, "Total Debt / Total Equity", opTotalDebt, opTotalEquity),
	quotient(RatioCurrentRatio, contracts.CategoryLeverage, "Current Assets / Current Liabilities", opCurrentAssets, opCurrentLiabs),
	quotient(RatioInterestCoverage, contracts.CategoryLeverage, "Operating Income / Interest Expense", opOperatingIncome, opInterestExpense),
	quotient(RatioNetDebtToEBITDA, contracts.CategoryLeverage, "Net Debt / EBITDA", opNetDebt, opEBITDA),

	quotient(RatioAssetTurnover, contracts.CategoryEfficiency, "Revenue / Total Assets", opRevenue, opTotalAssets),
	quotient(RatioInventoryTurnover, contracts.CategoryEfficiency, "Cost of Revenue / Inventory", opCostOfRevenue, opInventory),
	quotient(RatioReceivablesTurnover, contracts.CategoryEfficiency, "Revenue / Accounts Receivable", opRevenue, opReceivables),

	growth(RatioRevenueGrowth, "(Revenue - PrevRevenue) / |PrevRevenue|", contracts.StatementIncome, operandMetric(opRevenue)),
	growth(RatioNetIncomeGrowth, "(NI - PrevNI) / |PrevNI|", contracts.StatementIncome, operandMetric(opNetIncome)),
	growth(RatioEPSGrowth, "(EPS - PrevEPS) / |PrevEPS|", contracts.StatementIncome, operandMetric(opBasicEPS)),
	growth(RatioFCFGrowth, "(FCF - PrevFCF) / |PrevFCF|", contracts.StatementCashFlow, freeCashFlow),
}

// LookupRatio finds a catalog entry by name
func LookupRatio(name string) (RatioDef, bool) {
	for _, d := range Catalog {
		if d.Name == name {
			return d, true
		}
	}
	return RatioDef{}, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
