package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/cpfgate/cpfgate/internal/metrics"
)

const testCPF = "11144477735"

func newTestServer(t *testing.T, status int, body string, inspect func(r *http.Request, body []byte)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		reqBody, _ := io.ReadAll(r.Body)
		if inspect != nil {
			inspect(r, reqBody)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestCheckOperation_Decisions(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantEligible bool
		wantKind     Kind
	}{
		{
			name:         "eligible",
			body:         `{"erro":false,"objeto":{"perfilProposta":[{"permiteEmissao":true}]}}`,
			wantEligible: true,
		},
		{
			name: "first profile does not allow issuance",
			body: `{"erro":false,"objeto":{"perfilProposta":[{"permiteEmissao":false},{"permiteEmissao":true}]}}`,
		},
		{
			name: "null profiles means active contract",
			body: `{"erro":false,"objeto":{"perfilProposta":null}}`,
		},
		{
			name: "empty profiles means active contract",
			body: `{"erro":false,"objeto":{"perfilProposta":[]}}`,
		},
		{
			name:     "upstream reported error",
			body:     `{"erro":true}`,
			wantKind: KindUpstreamReported,
		},
		{
			name:     "upstream reported error as number",
			body:     `{"erro":1,"objeto":null}`,
			wantKind: KindUpstreamReported,
		},
		{
			name:     "missing objeto",
			body:     `{"erro":false}`,
			wantKind: KindTransport,
		},
		{
			name:     "malformed json",
			body:     `{"erro":`,
			wantKind: KindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newTestServer(t, http.StatusOK, tt.body, nil)
			c := New(srv.URL, time.Second)

			decision, err := c.CheckOperation(context.Background(), testCPF, "tok")

			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
			if tt.wantKind != 0 {
				var upErr *Error
				require.ErrorAs(t, err, &upErr)
				assert.Equal(t, tt.wantKind, upErr.Kind)
				assert.Nil(t, decision)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEligible, decision.Eligible)
		})
	}
}

func TestCheckOperation_RequestShape(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"erro":false,"objeto":{"perfilProposta":null}}`, func(r *http.Request, _ []byte) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/captura/operacao-cliente/"+testCPF, r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
	})

	c := New(srv.URL+"/captura/", time.Second)
	_, err := c.CheckOperation(context.Background(), testCPF, "secret-token")
	require.NoError(t, err)
}

func TestCheckOperation_Non2xxIsTransportError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		srv, _ := newTestServer(t, status, `{"erro":false,"objeto":{"perfilProposta":[{"permiteEmissao":true}]}}`, nil)
		c := New(srv.URL, time.Second)

		_, err := c.CheckOperation(context.Background(), testCPF, "tok")

		assert.ErrorIs(t, err, ErrTransport, "status %d", status)
		assert.False(t, errors.Is(err, ErrUpstreamReported))
		var upErr *Error
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, status, upErr.StatusCode)
	}
}

func TestCheckOperation_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := New(addr, time.Second)
	_, err := c.CheckOperation(context.Background(), testCPF, "tok")

	assert.ErrorIs(t, err, ErrTransport)
}

func TestCheckOperation_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, 50*time.Millisecond)
	_, err := c.CheckOperation(context.Background(), testCPF, "tok")

	var upErr *Error
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, KindTransport, upErr.Kind)
}

func TestCheckOperation_ResponseTooLarge(t *testing.T) {
	big := `{"erro":false,"objeto":{"perfilProposta":null},"pad":"` + strings.Repeat("x", maxResponseBytes) + `"}`
	srv, _ := newTestServer(t, http.StatusOK, big, nil)

	c := New(srv.URL, 5*time.Second)
	_, err := c.CheckOperation(context.Background(), testCPF, "tok")

	assert.ErrorIs(t, err, ErrTransport)
}

func TestSimulateProposal_ForwardsBodyVerbatim(t *testing.T) {
	payload := `{"valor": 1500.5, "parcelas": 12}`
	srv, calls := newTestServer(t, http.StatusOK, "", func(r *http.Request, body []byte) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/simulacao-proposta/"+testCPF, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, payload, string(body))
	})

	c := New(srv.URL, time.Second)
	decision, err := c.SimulateProposal(context.Background(), testCPF, "tok", []byte(payload))

	require.NoError(t, err)
	assert.False(t, decision.Eligible)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestSimulateProposal_UpstreamError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"erro":true}`, nil)

	c := New(srv.URL, time.Second)
	_, err := c.SimulateProposal(context.Background(), testCPF, "tok", []byte(`{}`))

	assert.ErrorIs(t, err, ErrUpstreamReported)
}

func TestClient_RecordsMetrics(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"erro":true}`, nil)
	rec := metrics.NewInMemory()

	c := New(srv.URL, time.Second, WithMetrics(rec))
	_, _ = c.CheckOperation(context.Background(), testCPF, "tok")

	assert.Equal(t, uint64(1), rec.Snapshot().UpstreamCalls["check/upstream_error"])
}

func TestClient_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	okSrv, _ := newTestServer(t, http.StatusOK, `{"erro":false,"objeto":{"perfilProposta":[{"permiteEmissao":true}]}}`, nil)
	badSrv, _ := newTestServer(t, http.StatusBadGateway, ``, nil)

	_, err := New(okSrv.URL, time.Second, WithTracer(tp.Tracer("test"))).CheckOperation(context.Background(), testCPF, "tok")
	require.NoError(t, err)
	_, err = New(badSrv.URL, time.Second, WithTracer(tp.Tracer("test"))).CheckOperation(context.Background(), testCPF, "tok")
	require.Error(t, err)

	var ops, transports []sdktrace.ReadOnlySpan
	for _, span := range sr.Ended() {
		if span.Name() == "upstream.check" {
			ops = append(ops, span)
		} else {
			transports = append(transports, span)
		}
	}

	require.Len(t, ops, 2)
	assert.Equal(t, trace.SpanKindInternal, ops[0].SpanKind())
	assert.Equal(t, codes.Unset, ops[0].Status().Code)
	assert.Equal(t, codes.Error, ops[1].Status().Code)
	assert.Equal(t, "transport_error", ops[1].Status().Description)

	// The instrumented transport adds one client span per request under the operation span.
	require.Len(t, transports, 2)
	for i, span := range transports {
		assert.Equal(t, trace.SpanKindClient, span.SpanKind())
		assert.Equal(t, ops[i].SpanContext().SpanID(), span.Parent().SpanID())
	}
}

func TestClient_Ping(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusMethodNotAllowed, "", nil)

	c := New(srv.URL, time.Second)
	assert.NoError(t, c.Ping(context.Background()))

	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestFlag_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`{"erro":true}`, true},
		{`{"erro":false}`, false},
		{`{"erro":null}`, false},
		{`{"erro":0}`, false},
		{`{"erro":2}`, true},
		{`{"erro":"true"}`, true},
		{`{"erro":"1"}`, true},
		{`{"erro":"false"}`, false},
		{`{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var env envelope
			require.NoError(t, json.Unmarshal([]byte(tt.in), &env))
			assert.Equal(t, tt.want, bool(env.Erro))
		})
	}
}

func TestError_Message(t *testing.T) {
	e := newError(KindTransport, OperationCheck, "unexpected status", nil)
	e.StatusCode = 503
	assert.Equal(t, "upstream check: unexpected status (status 503)", e.Error())

	cause := errors.New("dial tcp: refused")
	wrapped := newError(KindTransport, OperationCheck, "failed to execute request", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "dial tcp: refused")
}
