package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/pkg/breaker"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NotFound("missing"), http.StatusNotFound},
		{"conflict", apperrors.Conflict("taken"), http.StatusConflict},
		{"forbidden", apperrors.Forbidden("nope"), http.StatusForbidden},
		{"insufficient funds", apperrors.InsufficientFunds("broke"), http.StatusBadRequest},
		{"validation", apperrors.Validation("bad input"), http.StatusUnprocessableEntity},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"circuit open", breaker.ErrOpen, http.StatusServiceUnavailable},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			writeError(recorder, tc.err)
			assert.Equal(t, tc.status, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
		})
	}
}
