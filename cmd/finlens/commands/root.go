package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFlag string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "finlens",
	Short: "finlens - 재무 분석 엔진",
	Long: `finlens Unified CLI

재무제표 기반 비율 산출, DCF 내재가치 평가, 매수 후 보유 백테스트.

Usage:
  go run ./cmd/finlens [command]

Examples:
  go run ./cmd/finlens migrate
  go run ./cmd/finlens fetch AAPL MSFT --factors
  go run ./cmd/finlens ratios AAPL --report
  go run ./cmd/finlens value AAPL
  go run ./cmd/finlens backtest AAPL --benchmark SPY --period 5y
  go run ./cmd/finlens api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
