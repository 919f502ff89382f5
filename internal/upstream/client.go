// Package upstream talks to the credit API that decides loan eligibility.
//
// Each operation issues exactly one HTTP request. There are no retries; the
// caller decides what a failure means for the user.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cpfgate/cpfgate/internal/metrics"
)

// Operation names, also used as span and metric labels.
const (
	OperationCheck    = metrics.OperationCheck
	OperationSimulate = metrics.OperationSimulate
)

const (
	checkPath    = "/operacao-cliente/"
	simulatePath = "/simulacao-proposta/"

	// maxResponseBytes bounds how much of an upstream body is read.
	maxResponseBytes = 1 << 20

	userAgent = "cpfgate/1.0"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the upstream credit API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient HTTPDoer
	tracer     trace.Tracer
	metrics    metrics.Recorder
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTracer sets the tracer used for upstream spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// New creates a Client for baseURL. timeout bounds each call, including
// reading the body; zero means DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(timeout)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("github.com/cpfgate/cpfgate/internal/upstream")
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNoop()
	}
	return c
}

// CheckOperation asks the upstream whether the taxpayer may take a loan.
//
// GET {base}/operacao-cliente/{cpf}
func (c *Client) CheckOperation(ctx context.Context, cpf, token string) (*Decision, error) {
	return c.call(ctx, OperationCheck, http.MethodGet, checkPath+url.PathEscape(cpf), token, nil)
}

// SimulateProposal forwards a proposal simulation body verbatim.
//
// POST {base}/simulacao-proposta/{cpf}
func (c *Client) SimulateProposal(ctx context.Context, cpf, token string, body []byte) (*Decision, error) {
	return c.call(ctx, OperationSimulate, http.MethodPost, simulatePath+url.PathEscape(cpf), token, body)
}

// Ping checks that the upstream host accepts connections. Any HTTP answer,
// whatever its status, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) call(ctx context.Context, operation, method, path, token string, body []byte) (*Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "upstream."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("upstream.operation", operation),
		),
	)

	start := time.Now()
	decision, err := c.do(ctx, operation, method, path, token, body)

	status := "ok"
	var upErr *Error
	if errors.As(err, &upErr) {
		status = upErr.Kind.String()
		if upErr.StatusCode != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", upErr.StatusCode))
		}
	}
	c.metrics.ObserveUpstreamDuration(operation, status, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	} else {
		span.SetAttributes(attribute.Bool("eligibility.eligible", decision.Eligible))
	}
	span.End()

	return decision, err
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, body []byte) (*Decision, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, newError(KindTransport, operation, "failed to create request", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, newError(KindTransport, operation, "request timeout", err)
		}
		return nil, newError(KindTransport, operation, "failed to execute request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, newError(KindTransport, operation, "failed to read response", err)
	}
	if len(raw) > maxResponseBytes {
		return nil, newError(KindTransport, operation, "response too large", nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := newError(KindTransport, operation, "unexpected status", nil)
		e.StatusCode = resp.StatusCode
		return nil, e
	}

	return parse(operation, raw)
}

// parse interprets a 2xx body. The check operation requires "objeto" unless
// the upstream reports an error; simulation bodies may be empty.
func parse(operation string, raw []byte) (*Decision, error) {
	if operation == OperationSimulate && len(bytes.TrimSpace(raw)) == 0 {
		return &Decision{}, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, newError(KindTransport, operation, "failed to decode response", err)
	}

	if env.Erro {
		return nil, newError(KindUpstreamReported, operation, "upstream returned erro=true", nil)
	}

	if env.Objeto == nil && operation == OperationCheck {
		return nil, newError(KindTransport, operation, "response missing objeto", nil)
	}

	return env.Objeto.decision(), nil
}
