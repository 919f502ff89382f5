package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cpfgate/cpfgate/internal/middleware"
	"github.com/cpfgate/cpfgate/internal/model"
)

// EligibilityService is the business layer used by EligibilityHandler.
type EligibilityService interface {
	Check(ctx context.Context, cpf, authHeader string) model.Outcome
	Simulate(ctx context.Context, cpf, authHeader string, body []byte) model.Outcome
}

// EligibilityHandler serves the CPF check and proposal simulation endpoints.
type EligibilityHandler struct {
	service EligibilityService
	style   ResponseStyle
	logger  *slog.Logger
}

// NewEligibilityHandler creates a new EligibilityHandler.
func NewEligibilityHandler(service EligibilityService, style ResponseStyle, logger *slog.Logger) *EligibilityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EligibilityHandler{
		service: service,
		style:   style,
		logger:  logger,
	}
}

// Check answers whether the taxpayer may take a loan.
// GET /cpf?cpf=11144477735
func (h *EligibilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	out := h.service.Check(r.Context(), r.URL.Query().Get("cpf"), r.Header.Get("Authorization"))
	h.style.Write(w, out)
}

// Simulate forwards a proposal simulation body to the credit API.
// POST /simular?cpf=11144477735
func (h *EligibilityHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorBody{
				Error: middleware.PayloadTooLargeMessage,
				Code:  middleware.ErrCodePayloadTooLarge,
			})
			return
		}
		// Interrupted bodies are treated as malformed.
		h.logger.Warn("failed to read request body", "error", err)
		body = nil
	}

	out := h.service.Simulate(r.Context(), r.URL.Query().Get("cpf"), r.Header.Get("Authorization"), body)
	h.style.Write(w, out)
}

// Register mounts the eligibility routes on r.
func (h *EligibilityHandler) Register(r chi.Router) {
	r.Get("/cpf", h.Check)
	r.Post("/simular", h.Simulate)
}
