package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		userMsg    string
		err        error
		wantStatus int
	}{
		{"bad request", http.StatusBadRequest, ErrInvalidFormData, nil, http.StatusBadRequest},
		{"internal error with cause", http.StatusInternalServerError, ErrInternalServerError, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondWithError(rec, tt.status, tt.userMsg, "", tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.userMsg) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.userMsg)
			}
		})
	}
}
