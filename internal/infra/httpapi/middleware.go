package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"agentbuilder/internal/domain"
	"agentbuilder/internal/infra/telemetry"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// instrument attaches request ids, recovers panics and records request metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, meta := telemetry.RequestMetaFromHTTP(r)
		r = r.WithContext(ctx)
		w.Header().Set(telemetry.RequestIDHeader, meta.RequestID)
		rec := &statusRecorder{ResponseWriter: w}
		logger := telemetry.LoggerWithRequest(ctx, s.logger)

		defer func() {
			if p := recover(); p != nil {
				logger.Error("handler panic", zap.Any("panic", p), zap.String("path", r.URL.Path))
				if rec.status == 0 {
					writeError(rec, domain.E(domain.CodeInternal, "httpapi.recover", fmt.Sprint(p), nil))
				}
			}
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)
			s.metrics.ObserveHTTPRequest(route, status, elapsed)
			logger.Debug("request served",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				telemetry.DurationField(elapsed),
			)
		}()

		next.ServeHTTP(rec, r)
	})
}
