package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/internal/config"
	"productpulse/internal/shared/testutil"
)

func TestNewOTelConfig(t *testing.T) {
	cfg := NewOTelConfig(config.TelemetryConfig{
		ServiceName:    "pulse-test",
		TraceExporter:  "stdout",
		MetricsEnabled: true,
	}, false)

	assert.Equal(t, "pulse-test", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
	assert.Equal(t, "stdout", cfg.TraceExporter)

	disabled := NewOTelConfig(config.TelemetryConfig{TraceExporter: "none"}, true)
	assert.Equal(t, "none", disabled.MetricExporter)
	assert.Equal(t, "development", disabled.Environment)
}

func TestInitializeOTelPrometheus(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(NewOTelConfig(config.TelemetryConfig{
		ServiceName:    "pulse-test",
		TraceExporter:  "none",
		MetricsEnabled: true,
	}, true), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)
	assert.True(t, logs.ContainsMessage("OpenTelemetry initialized"))

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	ctx := context.Background()
	metrics.RecordUpload(ctx, "xlsx", 120*time.Millisecond, 9, 2, nil)
	metrics.RecordLogin(ctx, false)
	metrics.RecordAuthFailure(ctx, "missing_token")

	_, err = NewRuntimeMetrics(providers.Meter)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "uploads_total")
	assert.Contains(t, body, "observations_ingested_total")
	assert.Contains(t, body, "login_attempts_total")
	assert.Contains(t, body, "system_goroutines")
}

func TestInitializeOTelRepeatable(t *testing.T) {
	for i := 0; i < 2; i++ {
		providers, err := InitializeOTel(nil, nil)
		require.NoError(t, err)
		require.NoError(t, providers.Shutdown(context.Background()))
	}
}

func TestInitializeOTelStdoutTracing(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "pulse-test",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    1,
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.TracerProvider)
	ctx, span := providers.Tracer.Start(context.Background(), "decode")
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
	span.End()

	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "zipkin"}, nil)
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{TraceExporter: "none", MetricExporter: "statsd"}, nil)
	assert.Error(t, err)
}

func TestBusinessMetricsNilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.RecordUpload(context.Background(), "xlsx", time.Second, 1, 0, nil)
		m.RecordLogin(context.Background(), true)
		m.RecordAuthFailure(context.Background(), "expired")
	})
}

func TestRuntimeSnapshot(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "none", MetricExporter: "none"}, nil)
	require.NoError(t, err)
	rm, err := NewRuntimeMetrics(providers.Meter)
	require.NoError(t, err)

	s := rm.Snapshot()
	assert.Positive(t, s.Goroutines)
	assert.Positive(t, s.HeapAllocBytes)
	assert.GreaterOrEqual(t, s.UptimeSeconds, 0.0)
}
