package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/internal/shared/testutil"
	"productpulse/internal/storage"
	ws "productpulse/internal/websocket"
)

type stubHub struct{ clients int }

func (s stubHub) Stats() ws.Stats { return ws.Stats{Clients: s.clients} }

type downStore struct{ storage.Store }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthService_Checks(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	svc := NewHealthService("1.2.3", storage.NewMemoryStore(), stubHub{clients: 2}, nil, logger)
	ctx := context.Background()

	health := svc.HealthCheck(ctx)
	assert.Equal(t, StatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	ready := svc.ReadinessCheck(ctx)
	assert.Equal(t, StatusReady, ready.Status)
	require.Contains(t, ready.Services, "websocket")
	require.NotNil(t, ready.Services["websocket"].Clients)
	assert.Equal(t, 2, *ready.Services["websocket"].Clients)

	live := svc.LivenessCheck(ctx)
	assert.Equal(t, StatusAlive, live.Status)
	require.NotNil(t, live.Runtime)
	assert.Positive(t, live.Runtime.Goroutines)
	assert.NotEmpty(t, live.Runtime.GoVersion)

	assert.Equal(t, "1.2.3", svc.Version()["version"])
	assert.False(t, logs.ContainsMessage("Readiness check failed"))
}

func TestHealthService_NotReady(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	svc := NewHealthService("1.2.3", downStore{storage.NewMemoryStore()}, nil, nil, logger)
	ready := svc.ReadinessCheck(context.Background())
	assert.Equal(t, StatusNotReady, ready.Status)
	assert.Contains(t, ready.Services["storage"].Message, "connection refused")
	assert.Equal(t, StatusReady, ready.Services["websocket"].Status)
	assert.True(t, logs.ContainsAttr("service", "storage"))

	missing := NewHealthService("1.2.3", nil, nil, nil, logger)
	assert.Equal(t, StatusNotReady, missing.ReadinessCheck(context.Background()).Status)
}
