package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/finlens/backend/internal/backtest"
	"github.com/wonny/finlens/backend/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps engine sentinel errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, backtest.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrMissingData):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInsufficientData), errors.Is(err, contracts.ErrNumericGuard):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// entityID reads the {id} path variable
func entityID(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(mux.Vars(r)["id"]))
}
