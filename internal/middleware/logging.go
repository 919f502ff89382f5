package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mssola/useragent"
)

// CheckIDHeader is read back from the response to correlate access logs with
// eligibility logs.
const CheckIDHeader = "X-Check-ID"

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Logger returns a middleware that writes one structured line per request.
// Only the path is logged: the query string carries the CPF and headers carry
// the bearer token.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			attrs := []slog.Attr{
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", wrapped.status),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if checkID := wrapped.Header().Get(CheckIDHeader); checkID != "" {
				attrs = append(attrs, slog.String("check_id", checkID))
			}
			attrs = append(attrs, clientAttrs(r.UserAgent())...)

			level := slog.LevelInfo
			if wrapped.status >= 500 {
				level = slog.LevelError
			} else if wrapped.status >= 400 {
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request", attrs...)
		})
	}
}

// clientAttrs summarizes the user agent as browser, OS and form factor.
func clientAttrs(ua string) []slog.Attr {
	if ua == "" {
		return nil
	}

	parsed := useragent.New(ua)
	if parsed.Bot() {
		return []slog.Attr{slog.Bool("client_bot", true)}
	}

	browser, _ := parsed.Browser()
	platform := "desktop"
	if parsed.Mobile() {
		platform = "mobile"
	}

	return []slog.Attr{
		slog.String("client_browser", normalize(browser)),
		slog.String("client_os", normalize(parsed.OS())),
		slog.String("client_platform", platform),
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
