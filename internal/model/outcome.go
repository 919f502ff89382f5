// Package model defines domain entities for the application.
package model

import "fmt"

// OutcomeKind classifies the result of one eligibility or simulation request.
type OutcomeKind string

const (
	OutcomeInvalidFormat       OutcomeKind = "invalid_format"
	OutcomeInvalidCheckDigits  OutcomeKind = "invalid_check_digits"
	OutcomeMissingToken        OutcomeKind = "missing_token"
	OutcomeInvalidBody         OutcomeKind = "invalid_body"
	OutcomeTransportError      OutcomeKind = "transport_error"
	OutcomeUpstreamError       OutcomeKind = "upstream_error"
	OutcomeEligible            OutcomeKind = "eligible"
	OutcomeHasActiveContract   OutcomeKind = "active_contract"
	OutcomeInternalError       OutcomeKind = "internal_error"
	OutcomeSimulationForwarded OutcomeKind = "simulation_forwarded"
)

// Numeric error codes shown to the user inside the generic failure message.
const (
	ErrorCodeInternal  = 1
	ErrorCodeTransport = 2
	ErrorCodeUpstream  = 3
)

// Category groups outcome kinds by how they are presented.
type Category int

const (
	// CategoryRejected covers requests refused before any upstream call.
	CategoryRejected Category = iota
	// CategoryFailed covers internal, transport and upstream-reported failures.
	CategoryFailed
	// CategoryDecision covers business answers from the upstream.
	CategoryDecision
)

// Outcome is the result of a single request, ready to be rendered.
type Outcome struct {
	Kind    OutcomeKind
	CheckID string
}

// Category returns the presentation category of the outcome.
func (o Outcome) Category() Category {
	switch o.Kind {
	case OutcomeInvalidFormat, OutcomeInvalidCheckDigits, OutcomeMissingToken, OutcomeInvalidBody:
		return CategoryRejected
	case OutcomeEligible, OutcomeHasActiveContract, OutcomeSimulationForwarded:
		return CategoryDecision
	default:
		return CategoryFailed
	}
}

// ErrorCode returns the numeric code embedded in failure messages, or 0.
func (o Outcome) ErrorCode() int {
	switch o.Kind {
	case OutcomeInternalError:
		return ErrorCodeInternal
	case OutcomeTransportError:
		return ErrorCodeTransport
	case OutcomeUpstreamError:
		return ErrorCodeUpstream
	default:
		return 0
	}
}

// Message returns the user-facing Portuguese message for the outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeInvalidFormat:
		return "CPF inválido. Certifique-se de enviar 11 dígitos numéricos."
	case OutcomeInvalidCheckDigits:
		return "CPF inválido."
	case OutcomeMissingToken:
		return "Token não fornecido."
	case OutcomeInvalidBody:
		return "Corpo da requisição inválido."
	case OutcomeEligible:
		return "Parabéns, você está apto a fazer um empréstimo, estamos transferindo você."
	case OutcomeHasActiveContract:
		return "Infelizmente você já tem um contrato ativo, agradecemos seu contato."
	case OutcomeSimulationForwarded:
		return "Estamos transferindo você, aguarde um momento."
	default:
		return failureMessage(o.ErrorCode())
	}
}

// Code returns a stable machine-readable identifier for the outcome.
func (o Outcome) Code() string {
	switch o.Kind {
	case OutcomeInvalidFormat:
		return "INVALID_CPF_FORMAT"
	case OutcomeInvalidCheckDigits:
		return "INVALID_CPF"
	case OutcomeMissingToken:
		return "MISSING_TOKEN"
	case OutcomeInvalidBody:
		return "INVALID_BODY"
	case OutcomeTransportError:
		return "UPSTREAM_UNAVAILABLE"
	case OutcomeUpstreamError:
		return "UPSTREAM_ERROR"
	case OutcomeEligible:
		return "ELIGIBLE"
	case OutcomeHasActiveContract:
		return "ACTIVE_CONTRACT"
	case OutcomeSimulationForwarded:
		return "SIMULATION_FORWARDED"
	default:
		return "INTERNAL_ERROR"
	}
}

func failureMessage(code int) string {
	if code == 0 {
		code = ErrorCodeInternal
	}
	return fmt.Sprintf("Alguma coisa deu errado, código de erro %d, tente novamente mais tarde..", code)
}
