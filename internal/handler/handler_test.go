package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Index(t *testing.T) {
	rec := httptest.NewRecorder()

	New("staging").Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response IndexResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, IndexResponse{Service: "cpfgate", Version: Version, Environment: "staging"}, response)
}

func TestHandler_Fallbacks(t *testing.T) {
	h := New("test")

	tests := []struct {
		name      string
		serve     http.HandlerFunc
		method    string
		wantCode  int
		wantError string
	}{
		{"not found", h.NotFound, http.MethodGet, http.StatusNotFound, "resource not found"},
		{"method not allowed", h.MethodNotAllowed, http.MethodDelete, http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			tt.serve(rec, httptest.NewRequest(tt.method, "/cpf/extra", nil))

			assert.Equal(t, tt.wantCode, rec.Code)

			var response map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			assert.Equal(t, tt.wantError, response["error"])
		})
	}
}
