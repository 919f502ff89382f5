// Package eligibility turns a CPF and a bearer credential into one loan
// eligibility outcome, making at most one upstream call per request.
package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/cpfgate/cpfgate/internal/cpf"
	"github.com/cpfgate/cpfgate/internal/metrics"
	"github.com/cpfgate/cpfgate/internal/model"
	"github.com/cpfgate/cpfgate/internal/upstream"
)

// Upstream is the credit API port.
type Upstream interface {
	CheckOperation(ctx context.Context, cpf, token string) (*upstream.Decision, error)
	SimulateProposal(ctx context.Context, cpf, token string, body []byte) (*upstream.Decision, error)
}

// Service runs eligibility checks and proposal simulations.
type Service struct {
	upstream      Upstream
	fingerprinter *cpf.Fingerprinter
	logger        *slog.Logger
	metrics       metrics.Recorder
	newCheckID    func() string
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithCheckIDGenerator overrides how check IDs are produced.
func WithCheckIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newCheckID = fn
	}
}

// New creates a Service.
func New(up Upstream, fingerprinter *cpf.Fingerprinter, opts ...Option) (*Service, error) {
	if up == nil {
		return nil, errors.New("eligibility: upstream is required")
	}
	if fingerprinter == nil {
		return nil, errors.New("eligibility: fingerprinter is required")
	}

	s := &Service{
		upstream:      up,
		fingerprinter: fingerprinter,
		logger:        slog.Default(),
		metrics:       metrics.NewNoop(),
		newCheckID:    func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "eligibility")
	return s, nil
}

// Check validates the CPF and the credential, then asks the upstream whether
// the taxpayer may take a loan.
func (s *Service) Check(ctx context.Context, candidate, authHeader string) (out model.Outcome) {
	out.CheckID = s.newCheckID()
	logger := s.requestLogger(metrics.OperationCheck, out.CheckID, candidate)
	defer s.finish(logger, metrics.OperationCheck, &out)

	token, rejected := s.admit(candidate, authHeader)
	if rejected != "" {
		out.Kind = rejected
		return out
	}

	decision, err := s.upstream.CheckOperation(ctx, candidate, token)
	if err != nil {
		out.Kind = classify(err)
		logger.Warn("upstream check failed", "error", err)
		return out
	}

	if decision.Eligible {
		out.Kind = model.OutcomeEligible
	} else {
		out.Kind = model.OutcomeHasActiveContract
	}
	return out
}

// Simulate validates the CPF, the credential and the JSON body, then forwards
// the body to the upstream simulation endpoint. Once the call has been made the
// caller always gets SimulationForwarded; the real upstream answer is only
// logged and counted.
func (s *Service) Simulate(ctx context.Context, candidate, authHeader string, body []byte) (out model.Outcome) {
	out.CheckID = s.newCheckID()
	logger := s.requestLogger(metrics.OperationSimulate, out.CheckID, candidate)
	defer s.finish(logger, metrics.OperationSimulate, &out)

	token, rejected := s.admit(candidate, authHeader)
	if rejected != "" {
		out.Kind = rejected
		return out
	}
	if !json.Valid(body) {
		out.Kind = model.OutcomeInvalidBody
		return out
	}

	out.Kind = model.OutcomeSimulationForwarded
	decision, err := s.upstream.SimulateProposal(ctx, candidate, token, body)
	if err != nil {
		logger.Warn("upstream simulation failed",
			"upstream_outcome", classify(err),
			"error", err,
		)
		return out
	}
	logger.Info("upstream simulation answered", "eligible", decision.Eligible)
	return out
}

// admit runs the checks that must pass before any outbound call.
func (s *Service) admit(candidate, authHeader string) (string, model.OutcomeKind) {
	if err := cpf.Validate(candidate); err != nil {
		if errors.Is(err, cpf.ErrInvalidFormat) {
			return "", model.OutcomeInvalidFormat
		}
		return "", model.OutcomeInvalidCheckDigits
	}

	token := ExtractBearerToken(authHeader)
	if token == "" {
		return "", model.OutcomeMissingToken
	}
	return token, ""
}

func (s *Service) requestLogger(operation, checkID, candidate string) *slog.Logger {
	return s.logger.With(
		"operation", operation,
		"check_id", checkID,
		"cpf", cpf.Mask(candidate),
		"cpf_fp", s.fingerprinter.Fingerprint(candidate),
	)
}

// finish converts a panic into InternalException, then logs and counts the
// final outcome.
func (s *Service) finish(logger *slog.Logger, operation string, out *model.Outcome) {
	if rec := recover(); rec != nil {
		out.Kind = model.OutcomeInternalError
		logger.Error("panic while handling request", "panic", fmt.Sprint(rec))
	}

	s.metrics.IncOutcome(operation, string(out.Kind))

	level := slog.LevelInfo
	if out.Category() == model.CategoryFailed {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "request finished", "outcome", out.Kind)
}

func classify(err error) model.OutcomeKind {
	switch {
	case errors.Is(err, upstream.ErrUpstreamReported):
		return model.OutcomeUpstreamError
	case errors.Is(err, upstream.ErrTransport):
		return model.OutcomeTransportError
	default:
		return model.OutcomeInternalError
	}
}
