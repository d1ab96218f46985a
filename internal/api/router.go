package api

import (
	"net/http"
	"trade-route-service/internal/api/handlers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(optimizer handlers.TripOptimizer, db handlers.Pinger, routing string) http.Handler {
	mux := http.NewServeMux()

	optHandler := &handlers.OptimizeHandler{Optimizer: optimizer}
	healthHandler := &handlers.HealthHandler{DB: db, Routing: routing}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/optimize", optHandler.Optimize)
	mux.Handle("/metrics", promhttp.Handler())

	return requestIDMiddleware(loggingMiddleware(mux))
}
