package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/finlens/backend/internal/s0_data/collector"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <symbol>...",
	Short: "원천 데이터 수집",
	Long: `Alpha Vantage에서 시세, 개요, 재무제표 3종, 일별 가격을 수집해 저장합니다.
Yahoo 현재가가 있으면 스냅샷 가격을 덮어씁니다.

Example:
  go run ./cmd/finlens fetch AAPL
  go run ./cmd/finlens fetch AAPL MSFT --derive
  go run ./cmd/finlens fetch --factors`,
	RunE: runFetch,
}

var (
	fetchFactors bool
	fetchDerive  bool
	fetchWorkers int
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchFactors, "factors", false, "Fama-French 팩터도 갱신")
	fetchCmd.Flags().BoolVar(&fetchDerive, "derive", false, "수집 후 재무비율 산출")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 1, "동시 수집 수")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !fetchFactors {
		return fmt.Errorf("at least one symbol or --factors is required")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	col := a.collector()

	if fetchFactors {
		n, err := col.RefreshFactors(ctx)
		if err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("Factor months saved: %d", n))
	}

	if len(args) == 0 {
		return nil
	}

	results := col.CollectAll(ctx, args, collector.Config{Workers: fetchWorkers})

	fmt.Println()
	t := newTable(10, 12, 8, 8, 40)
	t.header("Symbol", "Statements", "Info", "Prices", "Error")
	failed := 0
	for _, r := range results {
		errText := ""
		if r.Error != nil {
			failed++
			errText = r.Error.Error()
		}
		t.row(
			r.EntityID,
			strconv.Itoa(r.StatementCount),
			strconv.Itoa(r.InfoCount),
			strconv.Itoa(r.PriceCount),
			errText,
		)
	}
	fmt.Println()

	if fetchDerive {
		svc := a.ratioService()
		for _, r := range results {
			derived, err := svc.DeriveRatios(ctx, r.EntityID)
			switch {
			case err != nil:
				PrintError(fmt.Sprintf("%s: %v", r.EntityID, err))
			case derived:
				PrintSuccess(fmt.Sprintf("%s: ratios derived", r.EntityID))
			default:
				PrintWarning(fmt.Sprintf("%s: no statement data", r.EntityID))
			}
		}
	}

	if failed == len(results) {
		return fmt.Errorf("all %d symbols failed", failed)
	}
	return nil
}
