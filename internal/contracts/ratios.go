package contracts

// RatioCategory groups canonical ratios
type RatioCategory string

const (
	CategoryProfitability RatioCategory = "Profitability"
	CategoryLeverage      RatioCategory = "Leverage"
	CategoryEfficiency    RatioCategory = "Efficiency"
	CategoryGrowth        RatioCategory = "Growth"
)

// Provenance records where a ratio value came from
type Provenance string

const (
	ProvenanceComputed Provenance = "computed"
	ProvenanceVendor   Provenance = "vendor"
)

// CanonicalRatio is one derived ratio, unique by (EntityID, FiscalYear, Name)
type CanonicalRatio struct {
	EntityID   string        `json:"entity_id"`
	FiscalYear int           `json:"fiscal_year"`
	Category   RatioCategory `json:"category"`
	Name       string        `json:"ratio_name"`
	Value      float64       `json:"ratio_value"`
	Provenance Provenance    `json:"provenance"`
}

// Key returns the upsert identity of the ratio
func (r CanonicalRatio) Key() RatioKey {
	return RatioKey{EntityID: r.EntityID, FiscalYear: r.FiscalYear, Name: r.Name}
}

// RatioKey is the uniqueness key of a CanonicalRatio
type RatioKey struct {
	EntityID   string
	FiscalYear int
	Name       string
}
