package fundamentals

import (
	"github.com/wonny/finlens/backend/internal/contracts"
)

// VendorOverride maps a canonical ratio to a vendor snapshot field
type VendorOverride struct {
	VendorKey string
	// Scale converts the vendor magnitude into the canonical unit
	Scale float64
}

// OverridePolicy is the strategy table consulted once per ratio per year.
// ⭐ SSOT: 벤더 값이 계산 값을 대체하는 규칙은 이 테이블에서만 정의
type OverridePolicy map[string]VendorOverride

// DefaultOverridePolicy returns the hybrid reconciliation table.
// debtToEquity is published as a percentage (41.6 means 0.416).
func DefaultOverridePolicy() OverridePolicy {
	return OverridePolicy{
		RatioGrossMargin:     {VendorKey: "grossMargins", Scale: 1},
		RatioOperatingMargin: {VendorKey: "operatingMargins", Scale: 1},
		RatioNetProfitMargin: {VendorKey: "profitMargins", Scale: 1},
		RatioReturnOnEquity:  {VendorKey: "returnOnEquity", Scale: 1},
		RatioDebtToEquity:    {VendorKey: "debtToEquity", Scale: 0.01},
		RatioCurrentRatio:    {VendorKey: "currentRatio", Scale: 1},
		RatioRevenueGrowth:   {VendorKey: "revenueGrowth", Scale: 1},
		RatioEPSGrowth:       {VendorKey: "earningsGrowth", Scale: 1},
	}
}

// Resolve picks the value for one (year, ratio) pair.
// A ratio that could not be computed stays omitted. Otherwise the vendor
// value wins only on the latest fiscal year, for reconcilable ratios listed
// in the table, when the snapshot holds a finite number.
func (p OverridePolicy) Resolve(def RatioDef, year, latestYear int, computed float64, hasComputed bool, snap contracts.InfoSnapshot) (float64, contracts.Provenance, bool) {
	if !hasComputed {
		return 0, "", false
	}
	if year == latestYear && def.Reconcilable() {
		if ov, ok := p[def.Name]; ok {
			if v, ok := snap.Float(ov.VendorKey); ok {
				scale := ov.Scale
				if scale == 0 {
					scale = 1
				}
				return v * scale, contracts.ProvenanceVendor, true
			}
		}
	}
	return computed, contracts.ProvenanceComputed, true
}
