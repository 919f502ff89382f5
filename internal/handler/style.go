package handler

import (
	"fmt"
	"net/http"

	"github.com/cpfgate/cpfgate/internal/middleware"
	"github.com/cpfgate/cpfgate/internal/model"
)

// StatusPolicy decides which HTTP status each outcome gets.
type StatusPolicy string

const (
	// StatusStandard maps failures to 4xx/5xx and business answers to 200.
	StatusStandard StatusPolicy = "standard"
	// StatusLegacy answers 200 only for eligible taxpayers and 500 for every
	// other non-validation outcome.
	StatusLegacy StatusPolicy = "legacy"
	// StatusSoft always answers 200.
	StatusSoft StatusPolicy = "soft"
)

// Envelope decides the JSON shape of the response body.
type Envelope string

const (
	// EnvelopeNested wraps the message as {"data": {"message", "code"}}.
	EnvelopeNested Envelope = "nested"
	// EnvelopeFlat uses {"error", "code"} for rejections and
	// {"message", "code"} otherwise.
	EnvelopeFlat Envelope = "flat"
)

// ResponseStyle renders outcomes to HTTP responses.
type ResponseStyle struct {
	Status   StatusPolicy
	Envelope Envelope
}

// DefaultStyle returns the standard status policy with the nested envelope.
func DefaultStyle() ResponseStyle {
	return ResponseStyle{Status: StatusStandard, Envelope: EnvelopeNested}
}

// ParseStyle builds a ResponseStyle from configuration values.
// Empty values select the defaults.
func ParseStyle(status, envelope string) (ResponseStyle, error) {
	style := DefaultStyle()

	switch StatusPolicy(status) {
	case "":
	case StatusStandard, StatusLegacy, StatusSoft:
		style.Status = StatusPolicy(status)
	default:
		return ResponseStyle{}, fmt.Errorf("unknown status policy %q", status)
	}

	switch Envelope(envelope) {
	case "":
	case EnvelopeNested, EnvelopeFlat:
		style.Envelope = Envelope(envelope)
	default:
		return ResponseStyle{}, fmt.Errorf("unknown envelope %q", envelope)
	}

	return style, nil
}

// MessageBody is the payload of a successful or business-decision response.
type MessageBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NestedBody wraps MessageBody under "data".
type NestedBody struct {
	Data MessageBody `json:"data"`
}

// ErrorBody is the payload used for rejected requests.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusCode returns the HTTP status for out.
func (s ResponseStyle) StatusCode(out model.Outcome) int {
	switch s.Status {
	case StatusSoft:
		return http.StatusOK
	case StatusLegacy:
		switch out.Kind {
		case model.OutcomeInvalidFormat, model.OutcomeInvalidCheckDigits, model.OutcomeInvalidBody:
			return http.StatusBadRequest
		case model.OutcomeMissingToken:
			return http.StatusUnauthorized
		case model.OutcomeEligible, model.OutcomeSimulationForwarded:
			return http.StatusOK
		default:
			return http.StatusInternalServerError
		}
	}

	switch out.Kind {
	case model.OutcomeInvalidFormat, model.OutcomeInvalidCheckDigits, model.OutcomeInvalidBody:
		return http.StatusBadRequest
	case model.OutcomeMissingToken:
		return http.StatusUnauthorized
	case model.OutcomeTransportError, model.OutcomeUpstreamError:
		return http.StatusBadGateway
	case model.OutcomeEligible, model.OutcomeHasActiveContract, model.OutcomeSimulationForwarded:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Body returns the JSON payload for out.
func (s ResponseStyle) Body(out model.Outcome) any {
	if out.Kind == model.OutcomeMissingToken {
		return ErrorBody{Error: out.Message(), Code: out.Code()}
	}

	if s.Envelope == EnvelopeFlat {
		if out.Category() == model.CategoryRejected {
			return ErrorBody{Error: out.Message(), Code: out.Code()}
		}
		return MessageBody{Message: out.Message(), Code: out.Code()}
	}

	return NestedBody{Data: MessageBody{Message: out.Message(), Code: out.Code()}}
}

// Write renders out to w, including the check ID header when present.
func (s ResponseStyle) Write(w http.ResponseWriter, out model.Outcome) {
	if out.CheckID != "" {
		w.Header().Set(middleware.CheckIDHeader, out.CheckID)
	}
	writeJSON(w, s.StatusCode(out), s.Body(out))
}

// InternalError renders the code 1 failure. It is used as the panic fallback.
func (s ResponseStyle) InternalError(w http.ResponseWriter, _ *http.Request) {
	s.Write(w, model.Outcome{Kind: model.OutcomeInternalError})
}
