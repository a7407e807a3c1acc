package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/internal/fundamentals"
)

// ratiosCmd represents the ratios command
var ratiosCmd = &cobra.Command{
	Use:   "ratios <symbol>",
	Short: "재무비율 산출",
	Long: `저장된 재무제표로 재무비율을 산출해 저장하고 출력합니다.

Example:
  go run ./cmd/finlens ratios AAPL
  go run ./cmd/finlens ratios AAPL --report
  go run ./cmd/finlens ratios AAPL --peers MSFT,GOOG`,
	Args: cobra.ExactArgs(1),
	RunE: runRatios,
}

var (
	ratiosReport bool
	ratiosPeers  string
)

func init() {
	rootCmd.AddCommand(ratiosCmd)

	ratiosCmd.Flags().BoolVar(&ratiosReport, "report", false, "연도/분류별 텍스트 리포트 출력")
	ratiosCmd.Flags().StringVar(&ratiosPeers, "peers", "", "비교 종목 (쉼표 구분)")
}

func runRatios(cmd *cobra.Command, args []string) error {
	id := strings.ToUpper(args[0])

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	svc := a.ratioService()

	derived, err := svc.DeriveRatios(ctx, id)
	if err != nil {
		return err
	}
	if !derived {
		PrintWarning(fmt.Sprintf("No statement data for %s. Run: finlens fetch %s", id, id))
	}

	if ratiosReport {
		report, err := svc.Report(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(report)
	} else {
		ratios, err := svc.Ratios(ctx, id)
		if err != nil {
			return err
		}
		printRatios(ratios)
	}

	if ratiosPeers != "" {
		ids := []string{id}
		for _, p := range strings.Split(ratiosPeers, ",") {
			if p = strings.ToUpper(strings.TrimSpace(p)); p != "" && p != id {
				ids = append(ids, p)
			}
		}
		cmp, err := svc.PeerComparison(ctx, ids)
		if err != nil {
			return err
		}
		printPeers(ids, cmp)
	}

	return nil
}

func printRatios(ratios []contracts.CanonicalRatio) {
	fmt.Println()
	t := newTable(6, 30, 14, 10)
	t.header("Year", "Ratio", "Value", "Source")
	for _, r := range ratios {
		t.row(fmt.Sprintf("%d", r.FiscalYear), r.Name, FormatRatio(r), string(r.Provenance))
	}
	fmt.Println()
}

func printPeers(ids []string, cmp map[string][]contracts.CanonicalRatio) {
	columns := append([]string{"Symbol", "Year"}, fundamentals.HeadlineRatios...)
	widths := []int{10, 6}
	for range fundamentals.HeadlineRatios {
		widths = append(widths, 18)
	}

	PrintTitle("Peer Comparison")
	t := newTable(widths...)
	t.header(columns...)

	for _, id := range ids {
		byName := make(map[string]contracts.CanonicalRatio)
		year := "-"
		for _, r := range cmp[id] {
			byName[r.Name] = r
			year = fmt.Sprintf("%d", r.FiscalYear)
		}

		row := []string{id, year}
		for _, name := range fundamentals.HeadlineRatios {
			if r, ok := byName[name]; ok {
				row = append(row, FormatRatio(r))
			} else {
				row = append(row, "n/a")
			}
		}
		t.row(row...)
	}
	fmt.Println()
}
