package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/consent-crawler/internal/delivery/http/handler"
	"github.com/user/consent-crawler/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)
	mux.HandleFunc("POST /api/sites", h.HandleSubmitSite)
	mux.HandleFunc("GET /api/status", h.HandleGetStatus)
	mux.HandleFunc("GET /api/results", h.HandleListResults)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
