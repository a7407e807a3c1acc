package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/finlens/backend/internal/backtest"
	"github.com/wonny/finlens/backend/internal/contracts"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest <symbol>",
	Short: "매수 후 보유 백테스트",
	Long: `저장된 일별 가격으로 매수 후 보유 성과를 벤치마크와 비교합니다.

Period: 1y, 2y, 5y, 10y, 6mo, ytd, max

Example:
  go run ./cmd/finlens backtest AAPL
  go run ./cmd/finlens backtest AAPL --benchmark QQQ --period 2y`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

var (
	backtestBenchmark string
	backtestPeriod    string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestBenchmark, "benchmark", "", "벤치마크 (기본: BACKTEST_BENCHMARK)")
	backtestCmd.Flags().StringVar(&backtestPeriod, "period", "", "기간 (기본: BACKTEST_PERIOD)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	res, err := a.backtestEngine().Run(ctx, backtest.Request{
		EntityID:    args[0],
		BenchmarkID: backtestBenchmark,
		Period:      backtestPeriod,
	})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintTitle(
		fmt.Sprintf("Backtest: %s vs %s (%s)", res.EntityID, res.BenchmarkID, res.Period),
		fmt.Sprintf("%s ~ %s, %s", res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02"), res.PriceColumn),
	)

	t := newTable(16, 14, 14)
	t.header("Metric", res.EntityID, res.BenchmarkID)
	rows := []struct {
		name string
		get  func(*contracts.PerformanceSummary) string
	}{
		{"Total Return", func(p *contracts.PerformanceSummary) string { return FormatPercent(p.TotalReturn) }},
		{"CAGR", func(p *contracts.PerformanceSummary) string { return FormatPercent(p.CAGR) }},
		{"Sharpe Ratio", func(p *contracts.PerformanceSummary) string { return fmt.Sprintf("%.2f", p.SharpeRatio) }},
		{"Max Drawdown", func(p *contracts.PerformanceSummary) string { return FormatPercent(p.MaxDrawdown) }},
		{"Trading Days", func(p *contracts.PerformanceSummary) string { return fmt.Sprintf("%d", p.TradingDays) }},
	}
	for _, row := range rows {
		bench := "n/a"
		if res.Metrics.Benchmark != nil {
			bench = row.get(res.Metrics.Benchmark)
		}
		t.row(row.name, row.get(res.Metrics.Target), bench)
	}

	if res.BenchmarkError != "" {
		PrintWarning("Benchmark unavailable: " + res.BenchmarkError)
	}
	PrintFooter()

	return nil
}
