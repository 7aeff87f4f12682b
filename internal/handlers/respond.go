package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/pkg/breaker"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindInsufficientFunds:
		return http.StatusBadRequest
	case apperrors.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to their fixed status codes. Anything
// unexpected becomes a 500 with no detail leaked.
func writeError(w http.ResponseWriter, err error) {
	if kind, ok := apperrors.KindOf(err); ok {
		respondJSON(w, statusForKind(kind), map[string]string{"error": err.Error()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if errors.Is(err, breaker.ErrOpen) || errors.Is(err, context.DeadlineExceeded) {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service unavailable"})
		return
	}

	logrus.WithError(err).Error("request failed")
	respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
