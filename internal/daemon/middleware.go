package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestLogger logs each request with zap and reports 5xx responses to
// Sentry.
func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("remote", r.RemoteAddr),
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.log.Error("request failed", fields...)
			s.sentry.CaptureError(
				fmt.Errorf("%s %s returned %d", r.Method, r.URL.Path, status),
				map[string]string{"request_id": middleware.GetReqID(r.Context())},
			)
		case status >= http.StatusBadRequest:
			s.log.Warn("request rejected", fields...)
		default:
			s.log.Debug("request", fields...)
		}
	})
}
