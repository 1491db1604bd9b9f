package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging logs one line per request, including the status the inner chain
// wrote. Submissions and verdict reads share this surface, so the path and
// status together are enough to follow a website through the pipeline.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}
