package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "productpulse/internal/errors"
	ws "productpulse/internal/websocket"
)

// HubStatsSource reports websocket hub counters
type HubStatsSource interface {
	Stats() ws.Stats
}

// MetricsHandler exposes the Prometheus scrape endpoint and hub counters
type MetricsHandler struct {
	prometheus   http.Handler
	hub          HubStatsSource
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a metrics handler. prometheus is nil when
// metrics export is disabled; hub may be nil.
func NewMetricsHandler(prometheus http.Handler, hub HubStatsSource, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		prometheus:   prometheus,
		hub:          hub,
		errorHandler: errorHandler,
	}
}

// Prometheus handles GET /metrics
func (h *MetricsHandler) Prometheus(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// WebSocketStats handles GET /api/metrics/websocket
func (h *MetricsHandler) WebSocketStats(w http.ResponseWriter, r *http.Request) {
	var stats ws.Stats
	if h.hub != nil {
		stats = h.hub.Stats()
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}
