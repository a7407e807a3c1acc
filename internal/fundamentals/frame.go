package fundamentals

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// FiscalYearFrame is a year × item view of one statement type for one entity.
// Years are held in descending order and a year exists only when at least one
// item was reported for it. Absent cells are NA, never zero.
type FiscalYearFrame struct {
	Statement contracts.StatementType

	years []int
	cells map[int]map[string]cell
}

type cell struct {
	value     float64
	periodEnd time.Time
}

func newFrame(stmt contracts.StatementType) *FiscalYearFrame {
	return &FiscalYearFrame{Statement: stmt, cells: make(map[int]map[string]cell)}
}

// put stores a value; when two rows land on the same (year, item) the later period end wins
func (f *FiscalYearFrame) put(year int, item string, value float64, periodEnd time.Time) {
	row, ok := f.cells[year]
	if !ok {
		row = make(map[string]cell)
		f.cells[year] = row
		f.years = append(f.years, year)
	}
	if prev, exists := row[item]; exists && prev.periodEnd.After(periodEnd) {
		return
	}
	row[item] = cell{value: value, periodEnd: periodEnd}
}

func (f *FiscalYearFrame) sortYears() {
	sort.Sort(sort.Reverse(sort.IntSlice(f.years)))
}

// Years returns the fiscal years, most recent first
func (f *FiscalYearFrame) Years() []int {
	if f == nil {
		return nil
	}
	out := make([]int, len(f.years))
	copy(out, f.years)
	return out
}

// HasYear reports whether the frame has any item for year
func (f *FiscalYearFrame) HasYear(year int) bool {
	if f == nil {
		return false
	}
	_, ok := f.cells[year]
	return ok
}

// Empty reports whether the frame has no years
func (f *FiscalYearFrame) Empty() bool {
	return f == nil || len(f.years) == 0
}

// LatestYear returns the most recent fiscal year
func (f *FiscalYearFrame) LatestYear() (int, bool) {
	if f.Empty() {
		return 0, false
	}
	return f.years[0], true
}

// Get is the null-safe accessor: absent year, absent item or a non-finite value is NA
func (f *FiscalYearFrame) Get(year int, item string) (float64, bool) {
	if f == nil {
		return 0, false
	}
	row, ok := f.cells[year]
	if !ok {
		return 0, false
	}
	c, ok := row[item]
	if !ok || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
		return 0, false
	}
	return c.value, true
}

// GetAny returns the first available item among aliases
func (f *FiscalYearFrame) GetAny(year int, items ...string) (float64, bool) {
	for _, item := range items {
		if v, ok := f.Get(year, item); ok {
			return v, true
		}
	}
	return 0, false
}

// Frames bundles the three statement frames of one entity
type Frames struct {
	Income   *FiscalYearFrame
	Balance  *FiscalYearFrame
	CashFlow *FiscalYearFrame
}

// Empty reports whether no statement produced a single year
func (fr Frames) Empty() bool {
	return fr.Income.Empty() && fr.Balance.Empty() && fr.CashFlow.Empty()
}

// Frame returns the frame of a statement type
func (fr Frames) Frame(stmt contracts.StatementType) *FiscalYearFrame {
	switch stmt {
	case contracts.StatementIncome:
		return fr.Income
	case contracts.StatementBalance:
		return fr.Balance
	case contracts.StatementCashFlow:
		return fr.CashFlow
	}
	return nil
}

// BuildFrames pivots raw rows into per-statement fiscal year frames.
// The fiscal year of a row is the calendar year of its period end.
// Rows with an unknown statement type or a non-finite value are skipped.
func BuildFrames(items []contracts.RawStatementItem) Frames {
	fr := Frames{
		Income:   newFrame(contracts.StatementIncome),
		Balance:  newFrame(contracts.StatementBalance),
		CashFlow: newFrame(contracts.StatementCashFlow),
	}

	for _, it := range items {
		frame := fr.Frame(it.Statement)
		if frame == nil || it.Item == "" {
			continue
		}
		if math.IsNaN(it.Value) || math.IsInf(it.Value, 0) {
			continue
		}
		frame.put(it.PeriodEnd.Year(), it.Item, it.Value, it.PeriodEnd)
	}

	fr.Income.sortYears()
	fr.Balance.sortYears()
	fr.CashFlow.sortYears()
	return fr
}
