package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "productpulse/internal/errors"
	"productpulse/internal/shared/testutil"
	ws "productpulse/internal/websocket"
)

type fixedHubStats ws.Stats

func (s fixedHubStats) Stats() ws.Stats { return ws.Stats(s) }

func TestMetricsHandler_Prometheus(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, nil, errorHandler).Prometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		scrape := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("productpulse_uploads_total 3\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(scrape, nil, errorHandler).Prometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "productpulse_uploads_total 3")
	})
}

func TestMetricsHandler_WebSocketStats(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	tests := []struct {
		name         string
		hub          HubStatsSource
		expectedBody string
	}{
		{name: "no hub", hub: nil, expectedBody: `"clients":0`},
		{name: "hub", hub: fixedHubStats{Clients: 2, MessagesSent: 7}, expectedBody: `"messages_sent":7`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewMetricsHandler(nil, tt.hub, errorHandler).WebSocketStats(rec, httptest.NewRequest(http.MethodGet, "/api/metrics/websocket", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}
