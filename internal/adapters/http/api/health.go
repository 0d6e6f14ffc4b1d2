package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/xrelay/pkg/metrics"
)

// Endpoints advertised by the health probe.
var Endpoints = []string{
	"GET /api/user/me",
	"GET /api/user/lists",
	"GET /api/list/tweets/:listId",
}

type healthResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	body healthResponse
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{body: healthResponse{
		Status:    "ok",
		Message:   "Twitter API Proxy Server is running",
		Endpoints: Endpoints,
	}}
}

// HandleRoot handles GET / requests. It never fails.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.body)
}

// NewMetricsHandler serves the relay's Prometheus registry.
func NewMetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
