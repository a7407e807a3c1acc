package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/wonny/finlens/backend/internal/backtest"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// Backtester runs buy-and-hold backtests
type Backtester interface {
	Run(ctx context.Context, req backtest.Request) (*backtest.Result, error)
}

// BacktestHandler handles backtest API endpoints
type BacktestHandler struct {
	engine Backtester
	logger *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(engine Backtester, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{engine: engine, logger: log}
}

// Get runs the backtest; blank benchmark and period fall back to the configured defaults
// GET /api/entities/{id}/backtest?benchmark=SPY&period=5y
func (h *BacktestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	if id == "" {
		respondError(w, http.StatusBadRequest, "entity id is required")
		return
	}

	q := r.URL.Query()
	req := backtest.Request{
		EntityID:    id,
		BenchmarkID: strings.TrimSpace(q.Get("benchmark")),
		Period:      strings.TrimSpace(q.Get("period")),
	}

	result, err := h.engine.Run(r.Context(), req)
	if err != nil {
		h.logger.WithEntity(id).WithError(err).Warn("Backtest failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
