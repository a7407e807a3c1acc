package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/finlens/backend/pkg/redis"
)

// valueCmd represents the value command
var valueCmd = &cobra.Command{
	Use:   "value <symbol>",
	Short: "DCF 내재가치 평가",
	Long: `Fama-French 3팩터 자기자본비용과 WACC로 주당 FCF를 할인해 적정가를 계산합니다.

Example:
  go run ./cmd/finlens value AAPL
  go run ./cmd/finlens value AAPL --refresh`,
	Args: cobra.ExactArgs(1),
	RunE: runValue,
}

var valueRefresh bool

func init() {
	rootCmd.AddCommand(valueCmd)

	valueCmd.Flags().BoolVar(&valueRefresh, "refresh", false, "오늘자 캐시 무시")
}

func runValue(cmd *cobra.Command, args []string) error {
	id := strings.ToUpper(args[0])

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if valueRefresh {
		if err := a.cache.Delete(ctx, redis.ValuationKey(id, time.Now())); err != nil {
			a.log.WithError(err).Warn("Failed to drop cached valuation")
		}
	}

	res, err := a.valuationService().ValueEntity(ctx, id)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintTitle("DCF Valuation: " + res.EntityID)
	PrintKeyValue("Current Price", FormatMoney(res.CurrentPrice, res.Currency))
	PrintKeyValue("Fair Value", FormatMoney(res.FairValue, res.Currency))
	PrintKeyValue("Verdict", strings.ToUpper(string(res.Verdict)))
	PrintSeparator()
	coe := FormatPercent(res.CostOfEquity)
	if res.CostOfEquityFallback {
		coe += " (default: " + res.CostOfEquityNote + ")"
	}
	PrintKeyValue("Cost of Equity", coe)
	PrintKeyValue("Cost of Debt", FormatPercent(res.CostOfDebt))
	PrintKeyValue("WACC", FormatPercent(res.WACC))
	PrintKeyValue("FCF per Share", FormatMoney(res.ProjectedFCFPerShare, res.Currency))
	PrintKeyValue("Growth / Terminal", FormatPercent(res.GrowthAssumption)+" / "+FormatPercent(res.TerminalGrowth))
	PrintKeyValue("Projection Years", fmt.Sprintf("%d", res.ProjectionYears))
	PrintFooter()

	return nil
}
