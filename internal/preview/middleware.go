package preview

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/dhalldocs/internal/logfields"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs each request once it has been served.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				logfields.Path(r.URL.Path),
				"status", sw.status,
				"request_id", middleware.GetReqID(r.Context()),
				logfields.DurationMS(time.Since(start).Milliseconds()),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
