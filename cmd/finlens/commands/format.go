package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일

const (
	ruleWidth = 59
	keyWidth  = 22
)

// PrintSeparator prints a single rule
func PrintSeparator() { fmt.Println(strings.Repeat("─", ruleWidth)) }

// PrintTitle opens a report block: double rule, title, optional detail lines
func PrintTitle(title string, details ...string) {
	fmt.Println(strings.Repeat("═", ruleWidth))
	fmt.Printf("  %s\n", title)
	for _, d := range details {
		fmt.Printf("  %s\n", d)
	}
	PrintSeparator()
}

// PrintFooter closes a report block
func PrintFooter() { fmt.Println(strings.Repeat("═", ruleWidth)) }

func PrintWarning(message string) { fmt.Printf("⚠️  %s\n", message) }
func PrintSuccess(message string) { fmt.Printf("✅ %s\n", message) }
func PrintError(message string)   { fmt.Printf("❌ %s\n", message) }

// PrintKeyValue prints one aligned "key : value" line
func PrintKeyValue(key, value string) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// table prints fixed-width columns separated by two spaces
type table struct {
	widths []int
}

func newTable(widths ...int) *table {
	return &table{widths: widths}
}

// header prints the column names and a rule spanning the table
func (t *table) header(columns ...string) {
	t.row(columns...)
	total := 0
	for i, w := range t.widths {
		if i > 0 {
			total += 2
		}
		total += w
	}
	fmt.Println(strings.Repeat("─", total))
}

func (t *table) row(values ...string) {
	cells := make([]string, len(values))
	for i, v := range values {
		if i < len(t.widths) {
			v = fmt.Sprintf("%-*s", t.widths[i], v)
		}
		cells[i] = v
	}
	fmt.Println(strings.TrimRight(strings.Join(cells, "  "), " "))
}

// FormatPercent renders a fraction as a percentage
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatMoney renders a per-share amount with its currency
func FormatMoney(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

// FormatRatio renders margins, returns and growth as percentages and the
// leverage and efficiency ratios as multiples
func FormatRatio(r contracts.CanonicalRatio) string {
	switch r.Category {
	case contracts.CategoryProfitability, contracts.CategoryGrowth:
		return FormatPercent(r.Value)
	default:
		return fmt.Sprintf("%.2fx", r.Value)
	}
}
