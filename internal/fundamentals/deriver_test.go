package fundamentals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/logger"
)

func find(ratios []contracts.CanonicalRatio, year int, name string) (contracts.CanonicalRatio, bool) {
	for _, r := range ratios {
		if r.FiscalYear == year && r.Name == name {
			return r, true
		}
	}
	return contracts.CanonicalRatio{}, false
}

func TestDeriver_ReturnOnEquityScenario(t *testing.T) {
	d := NewDeriver(logger.Nop())

	ratios, err := d.Derive("TEST", []contracts.RawStatementItem{
		row(contracts.StatementIncome, "Revenue", 2023, 100),
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 10),
		row(contracts.StatementBalance, contracts.ItemTotalEquity, 2023, 50),
	}, contracts.NewInfoSnapshot(nil))
	require.NoError(t, err)

	roe, ok := find(ratios, 2023, RatioReturnOnEquity)
	require.True(t, ok)
	assert.Equal(t, 0.20, roe.Value)
	assert.Equal(t, contracts.ProvenanceComputed, roe.Provenance)
	assert.Equal(t, contracts.CategoryProfitability, roe.Category)

	npm, ok := find(ratios, 2023, RatioNetProfitMargin)
	require.True(t, ok)
	assert.Equal(t, 0.10, npm.Value)

	// nothing else has its operands
	assert.Len(t, ratios, 2)
}

func TestDeriver_MissingFrames(t *testing.T) {
	d := NewDeriver(logger.Nop())

	_, err := d.Derive("TEST", []contracts.RawStatementItem{
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 10),
	}, contracts.NewInfoSnapshot(nil))
	assert.ErrorIs(t, err, contracts.ErrMissingData)

	_, err = d.Derive("TEST", nil, contracts.NewInfoSnapshot(nil))
	assert.ErrorIs(t, err, contracts.ErrMissingData)
}

func TestDeriver_OnlyYearsInBothFrames(t *testing.T) {
	d := NewDeriver(logger.Nop())

	ratios, err := d.Derive("TEST", []contracts.RawStatementItem{
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 10),
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2022, 8),
		row(contracts.StatementBalance, contracts.ItemTotalEquity, 2023, 50),
	}, contracts.NewInfoSnapshot(nil))
	require.NoError(t, err)

	for _, r := range ratios {
		assert.Equal(t, 2023, r.FiscalYear)
	}
}

func TestDeriver_DenominatorGuard(t *testing.T) {
	tests := []struct {
		name   string
		equity float64
	}{
		{"zero equity", 0},
		{"negative equity", -5},
	}

	d := NewDeriver(logger.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratios, err := d.Derive("TEST", []contracts.RawStatementItem{
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 10),
				row(contracts.StatementBalance, contracts.ItemTotalEquity, 2023, tt.equity),
				row(contracts.StatementBalance, contracts.ItemTotalDebt, 2023, 30),
			}, contracts.NewInfoSnapshot(nil))
			require.NoError(t, err)

			_, ok := find(ratios, 2023, RatioReturnOnEquity)
			assert.False(t, ok)
			_, ok = find(ratios, 2023, RatioDebtToEquity)
			assert.False(t, ok)
		})
	}
}

func reconciliationItems() []contracts.RawStatementItem {
	return []contracts.RawStatementItem{
		row(contracts.StatementIncome, contracts.ItemTotalRevenue, 2023, 120),
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 12),
		row(contracts.StatementIncome, contracts.ItemTotalRevenue, 2022, 100),
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2022, 10),
		row(contracts.StatementBalance, contracts.ItemTotalEquity, 2023, 60),
		row(contracts.StatementBalance, contracts.ItemTotalDebt, 2023, 30),
		row(contracts.StatementBalance, contracts.ItemTotalEquity, 2022, 50),
		row(contracts.StatementBalance, contracts.ItemTotalDebt, 2022, 20),
	}
}

func TestDeriver_VendorOverrideLatestYearOnly(t *testing.T) {
	d := NewDeriver(logger.Nop())
	snap := contracts.NewInfoSnapshot(map[string]string{
		"returnOnEquity": "0.25",
		"debtToEquity":   "41.6",
		"revenueGrowth":  "0.9",
		"profitMargins":  "None",
	})

	ratios, err := d.Derive("TEST", reconciliationItems(), snap)
	require.NoError(t, err)

	roe, ok := find(ratios, 2023, RatioReturnOnEquity)
	require.True(t, ok)
	assert.Equal(t, 0.25, roe.Value)
	assert.Equal(t, contracts.ProvenanceVendor, roe.Provenance)

	de, ok := find(ratios, 2023, RatioDebtToEquity)
	require.True(t, ok)
	assert.InDelta(t, 0.416, de.Value, 1e-12)
	assert.Equal(t, contracts.ProvenanceVendor, de.Provenance)

	// historical years keep the computed value
	roe22, ok := find(ratios, 2022, RatioReturnOnEquity)
	require.True(t, ok)
	assert.Equal(t, 0.2, roe22.Value)
	assert.Equal(t, contracts.ProvenanceComputed, roe22.Provenance)

	de22, ok := find(ratios, 2022, RatioDebtToEquity)
	require.True(t, ok)
	assert.Equal(t, 0.4, de22.Value)

	// placeholder vendor value falls back to the computed one
	npm, ok := find(ratios, 2023, RatioNetProfitMargin)
	require.True(t, ok)
	assert.Equal(t, 0.1, npm.Value)
	assert.Equal(t, contracts.ProvenanceComputed, npm.Provenance)

	// growth is never reconciled
	g, ok := find(ratios, 2023, RatioRevenueGrowth)
	require.True(t, ok)
	assert.InDelta(t, 0.2, g.Value, 1e-12)
	assert.Equal(t, contracts.ProvenanceComputed, g.Provenance)
}

func TestDeriver_VendorNeverFillsOmittedRatio(t *testing.T) {
	d := NewDeriver(logger.Nop())
	snap := contracts.NewInfoSnapshot(map[string]string{
		"currentRatio":   "1.8",
		"returnOnEquity": "0.3",
	})

	items := []contracts.RawStatementItem{
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 10),
		row(contracts.StatementBalance, contracts.ItemTotalEquity, 2023, -5),
	}

	ratios, err := d.Derive("TEST", items, snap)
	require.NoError(t, err)

	_, ok := find(ratios, 2023, RatioReturnOnEquity)
	assert.False(t, ok, "negative equity leaves ROE out even with a vendor value")

	_, ok = find(ratios, 2023, RatioCurrentRatio)
	assert.False(t, ok, "no current assets or liabilities")

	ratios, err = d.Derive("TEST", reconciliationItems(), snap)
	require.NoError(t, err)
	_, ok = find(ratios, 2023, RatioCurrentRatio)
	assert.False(t, ok)
}

func TestDeriver_GrowthUsesPreviousYear(t *testing.T) {
	tests := []struct {
		name   string
		items  []contracts.RawStatementItem
		want   float64
		wantOK bool
	}{
		{
			name: "consecutive years",
			items: []contracts.RawStatementItem{
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 15),
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2022, 10),
			},
			want:   0.5,
			wantOK: true,
		},
		{
			name: "negative previous uses absolute value",
			items: []contracts.RawStatementItem{
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, -25),
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2022, -50),
			},
			want:   0.5,
			wantOK: true,
		},
		{
			name: "gap year is not a previous year",
			items: []contracts.RawStatementItem{
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 15),
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2021, 10),
			},
			wantOK: false,
		},
		{
			name: "zero previous is guarded",
			items: []contracts.RawStatementItem{
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 15),
				row(contracts.StatementIncome, contracts.ItemNetIncome, 2022, 0),
			},
			wantOK: false,
		},
	}

	d := NewDeriver(logger.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := append(tt.items, row(contracts.StatementBalance, contracts.ItemTotalEquity, 2023, 100))
			ratios, err := d.Derive("TEST", items, contracts.NewInfoSnapshot(nil))
			require.NoError(t, err)

			g, ok := find(ratios, 2023, RatioNetIncomeGrowth)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, g.Value, 1e-12)
				assert.Equal(t, contracts.CategoryGrowth, g.Category)
			}
		})
	}
}

func TestDeriver_FCFGrowthDerivesFreeCashFlow(t *testing.T) {
	d := NewDeriver(logger.Nop())

	ratios, err := d.Derive("TEST", []contracts.RawStatementItem{
		row(contracts.StatementIncome, contracts.ItemNetIncome, 2023, 10),
		row(contracts.StatementBalance, contracts.ItemTotalEquity, 2023, 100),
		row(contracts.StatementCashFlow, contracts.ItemOperatingCashFlow, 2023, 50),
		row(contracts.StatementCashFlow, contracts.ItemCapitalExpenditure, 2023, -20),
		row(contracts.StatementCashFlow, contracts.ItemFreeCashFlow, 2022, 20),
	}, contracts.NewInfoSnapshot(nil))
	require.NoError(t, err)

	// FCF 2023 = 50 - |-20| = 30, 2022 reported as 20
	g, ok := find(ratios, 2023, RatioFCFGrowth)
	require.True(t, ok)
	assert.InDelta(t, 0.5, g.Value, 1e-12)
}

func TestDeriver_Idempotent(t *testing.T) {
	d := NewDeriver(logger.Nop())
	snap := contracts.NewInfoSnapshot(map[string]string{"returnOnEquity": "0.25"})

	first, err := d.Derive("TEST", reconciliationItems(), snap)
	require.NoError(t, err)
	second, err := d.Derive("TEST", reconciliationItems(), snap)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	seen := make(map[contracts.RatioKey]bool)
	for _, r := range first {
		assert.False(t, seen[r.Key()], "duplicate key %v", r.Key())
		seen[r.Key()] = true
	}
}

func TestCatalog_GrowthNotReconcilable(t *testing.T) {
	policy := DefaultOverridePolicy()
	for _, def := range Catalog {
		if def.Category == contracts.CategoryGrowth {
			assert.False(t, def.Reconcilable(), def.Name)
		}
	}
	for name := range policy {
		_, ok := LookupRatio(name)
		assert.True(t, ok, "override for unknown ratio %s", name)
	}
}
