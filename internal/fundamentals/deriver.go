package fundamentals

import (
	"fmt"
	"math"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// Deriver converts raw statement rows into canonical ratios
// ⭐ SSOT: 재무비율 계산은 여기서만
type Deriver struct {
	policy OverridePolicy
	logger *logger.Logger
}

// NewDeriver creates a deriver with the default override policy
func NewDeriver(log *logger.Logger) *Deriver {
	return &Deriver{
		policy: DefaultOverridePolicy(),
		logger: log,
	}
}

// WithPolicy replaces the override policy
func (d *Deriver) WithPolicy(p OverridePolicy) *Deriver {
	d.policy = p
	return d
}

// Derive produces the ratio set for every fiscal year present in both the
// income and balance sheet frames, most recent year first.
// A ratio whose preconditions fail is left out of the result.
func (d *Deriver) Derive(entityID string, items []contracts.RawStatementItem, snap contracts.InfoSnapshot) ([]contracts.CanonicalRatio, error) {
	frames := BuildFrames(items)
	if frames.Income.Empty() || frames.Balance.Empty() {
		return nil, fmt.Errorf("derive ratios for %s: income or balance frame: %w", entityID, contracts.ErrMissingData)
	}
	return d.DeriveFrames(entityID, frames, snap), nil
}

// DeriveFrames is Derive over already pivoted frames
func (d *Deriver) DeriveFrames(entityID string, frames Frames, snap contracts.InfoSnapshot) []contracts.CanonicalRatio {
	latest, ok := frames.Income.LatestYear()
	if !ok {
		return nil
	}

	log := d.logger.WithEntity(entityID)
	var out []contracts.CanonicalRatio

	for _, year := range frames.Income.Years() {
		if !frames.Balance.HasYear(year) {
			continue
		}

		for _, def := range Catalog {
			computed, err := compute(def, frames, year)
			if err != nil {
				log.WithFields(map[string]interface{}{
					"year":  year,
					"ratio": def.Name,
				}).WithError(err).Debug("Ratio omitted")
			}

			value, prov, ok := d.policy.Resolve(def, year, latest, computed, err == nil, snap)
			if !ok {
				continue
			}

			out = append(out, contracts.CanonicalRatio{
				EntityID:   entityID,
				FiscalYear: year,
				Category:   def.Category,
				Name:       def.Name,
				Value:      value,
				Provenance: prov,
			})
		}
	}

	return out
}

// compute evaluates one catalog entry for one year
func compute(def RatioDef, fr Frames, year int) (float64, error) {
	switch def.kind {
	case kindGrowth:
		return computeGrowth(def, fr, year)
	default:
		return computeQuotient(def, fr, year)
	}
}

func computeQuotient(def RatioDef, fr Frames, year int) (float64, error) {
	num, ok := fr.Frame(def.numerator.statement).GetAny(year, def.numerator.items...)
	if !ok {
		return 0, fmt.Errorf("numerator: %w", contracts.ErrMissingData)
	}
	den, ok := fr.Frame(def.denominator.statement).GetAny(year, def.denominator.items...)
	if !ok {
		return 0, fmt.Errorf("denominator: %w", contracts.ErrMissingData)
	}
	if den <= 0 {
		return 0, fmt.Errorf("denominator %v: %w", den, contracts.ErrNumericGuard)
	}
	return finite(num / den)
}

// computeGrowth always reads the previous value from year-1, never from year itself
func computeGrowth(def RatioDef, fr Frames, year int) (float64, error) {
	prevYear := year - 1
	if !fr.Frame(def.growthFrame).HasYear(prevYear) {
		return 0, fmt.Errorf("no fiscal year %d: %w", prevYear, contracts.ErrMissingData)
	}
	cur, ok := def.metric(fr, year)
	if !ok {
		return 0, fmt.Errorf("current value: %w", contracts.ErrMissingData)
	}
	prev, ok := def.metric(fr, prevYear)
	if !ok {
		return 0, fmt.Errorf("previous value: %w", contracts.ErrMissingData)
	}
	if prev == 0 {
		return 0, fmt.Errorf("previous value is zero: %w", contracts.ErrNumericGuard)
	}
	return finite((cur - prev) / abs(prev))
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, contracts.ErrNumericGuard
	}
	return v, nil
}
