package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// RatioService is the ratio side of the engine
type RatioService interface {
	DeriveRatios(ctx context.Context, entityID string) (bool, error)
	Ratios(ctx context.Context, entityID string) ([]contracts.CanonicalRatio, error)
	Report(ctx context.Context, entityID string) (string, error)
	PeerComparison(ctx context.Context, entityIDs []string) (map[string][]contracts.CanonicalRatio, error)
}

// RatioHandler handles ratio API endpoints
// ⭐ SSOT: 재무비율 API 핸들러는 이 구조체에서만
type RatioHandler struct {
	service RatioService
	logger  *logger.Logger
}

// NewRatioHandler creates a new ratio handler
func NewRatioHandler(service RatioService, log *logger.Logger) *RatioHandler {
	return &RatioHandler{
		service: service,
		logger:  log,
	}
}

// Derive recomputes and stores the ratios of one entity
// POST /api/entities/{id}/ratios
func (h *RatioHandler) Derive(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	if id == "" {
		respondError(w, http.StatusBadRequest, "entity id is required")
		return
	}

	derived, err := h.service.DeriveRatios(r.Context(), id)
	if err != nil {
		h.logger.WithEntity(id).WithError(err).Error("Failed to derive ratios")
		respondError(w, statusFor(err), "Failed to derive ratios")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"entity_id": id,
		"derived":   derived,
	})
}

// Get returns the stored ratios; ?report=true renders the text report and
// ?peers=A,B adds the headline ratios of the listed entities.
// GET /api/entities/{id}/ratios
func (h *RatioHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := entityID(r)
	if id == "" {
		respondError(w, http.StatusBadRequest, "entity id is required")
		return
	}
	log := h.logger.WithEntity(id)

	if r.URL.Query().Get("report") == "true" {
		report, err := h.service.Report(ctx, id)
		if err != nil {
			log.WithError(err).Error("Failed to build ratio report")
			respondError(w, statusFor(err), "Failed to build ratio report")
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    report,
		})
		return
	}

	ratios, err := h.service.Ratios(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get ratios")
		respondError(w, statusFor(err), "Failed to retrieve ratios")
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"data":    ratios,
	}

	if raw := r.URL.Query().Get("peers"); raw != "" {
		peers := []string{id}
		for _, p := range strings.Split(raw, ",") {
			if p = strings.ToUpper(strings.TrimSpace(p)); p != "" && p != id {
				peers = append(peers, p)
			}
		}
		cmp, err := h.service.PeerComparison(ctx, peers)
		if err != nil {
			log.WithError(err).Error("Failed to compare peers")
			respondError(w, statusFor(err), "Failed to compare peers")
			return
		}
		resp["peers"] = cmp
	}

	respondJSON(w, http.StatusOK, resp)
}
