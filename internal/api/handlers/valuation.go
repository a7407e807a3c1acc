package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// Valuer runs the DCF valuation
type Valuer interface {
	ValueEntity(ctx context.Context, entityID string) (*contracts.ValuationResult, error)
}

// ValuationHandler handles valuation API endpoints
type ValuationHandler struct {
	valuer Valuer
	logger *logger.Logger
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(valuer Valuer, log *logger.Logger) *ValuationHandler {
	return &ValuationHandler{valuer: valuer, logger: log}
}

// Get returns fair value and verdict
// GET /api/entities/{id}/valuation
func (h *ValuationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	if id == "" {
		respondError(w, http.StatusBadRequest, "entity id is required")
		return
	}

	result, err := h.valuer.ValueEntity(r.Context(), id)
	if err != nil {
		h.logger.WithEntity(id).WithError(err).Warn("Valuation failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
