package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/finlens/backend/internal/api"
	"github.com/wonny/finlens/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                           - Health check
  POST /api/entities/{id}/ratios         - 재무비율 산출
  GET  /api/entities/{id}/ratios         - 재무비율 조회 (?report=true, ?peers=A,B)
  GET  /api/entities/{id}/valuation      - DCF 평가
  GET  /api/entities/{id}/backtest       - 백테스트 (?benchmark=SPY&period=5y)

Example:
  go run ./cmd/finlens api
  go run ./cmd/finlens api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== finlens API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	h := api.Handlers{
		Ratios:    handlers.NewRatioHandler(a.ratioService(), a.log),
		Valuation: handlers.NewValuationHandler(a.valuationService(), a.log),
		Backtest:  handlers.NewBacktestHandler(a.backtestEngine(), a.log),
	}
	server := api.New(a.cfg, a.log, api.NewRouter(h, a.db, a.log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	return server.Run(ctx)
}
