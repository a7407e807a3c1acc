package fundamentals

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/finlens/backend/internal/contracts"
)

var categoryOrder = []contracts.RatioCategory{
	contracts.CategoryProfitability,
	contracts.CategoryLeverage,
	contracts.CategoryEfficiency,
	contracts.CategoryGrowth,
}

// FormatReport renders company facts and ratios grouped by year (newest first) then category
func FormatReport(entityID string, ratios []contracts.CanonicalRatio, info contracts.InfoSnapshot) string {
	if len(ratios) == 0 {
		return fmt.Sprintf("No financial data available for %s.", entityID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Financial Analysis for %s ===\n", entityID)

	facts := []struct{ label, key string }{
		{"Company Name", contracts.InfoLongName},
		{"Sector", contracts.InfoSector},
		{"Industry", contracts.InfoIndustry},
		{"Market Cap", contracts.InfoMarketCap},
	}
	for _, f := range facts {
		if v, ok := info.String(f.key); ok {
			fmt.Fprintf(&b, "%s: %s\n", f.label, v)
		}
	}

	b.WriteString("\n=== Key Financial Ratios (Historical) ===\n")

	byYear := make(map[int]map[contracts.RatioCategory][]contracts.CanonicalRatio)
	for _, r := range ratios {
		if byYear[r.FiscalYear] == nil {
			byYear[r.FiscalYear] = make(map[contracts.RatioCategory][]contracts.CanonicalRatio)
		}
		byYear[r.FiscalYear][r.Category] = append(byYear[r.FiscalYear][r.Category], r)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	for _, y := range years {
		fmt.Fprintf(&b, "\n[Year %d]\n", y)
		for _, cat := range categoryOrder {
			rows := byYear[y][cat]
			if len(rows) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  * %s:\n", cat)
			for _, r := range rows {
				tag := ""
				if r.Provenance == contracts.ProvenanceVendor {
					tag = " (vendor)"
				}
				fmt.Fprintf(&b, "    - %s: %.4f%s\n", r.Name, r.Value, tag)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
