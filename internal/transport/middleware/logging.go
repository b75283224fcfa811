package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/guard-deployment/pkg/logger"
	"github.com/go-chi/chi"
)

// LoggingMiddleware writes one access line per request, at warn for 4xx and
// error for 5xx. Bodies are not logged.
func LoggingMiddleware(fallback *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(ww, r)

			logger.FromOr(r.Context(), fallback).Log(r.Context(), levelFor(ww.status()), "request handled",
				"method", r.Method,
				"route", routePattern(r),
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status_code", ww.status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", ww.written,
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code    int
	written int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.written += n
	return n, err
}

func (sw *statusWriter) status() int {
	if sw.code == 0 {
		return http.StatusOK
	}
	return sw.code
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
