package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/internal/config"
	"productpulse/internal/shared/testutil"
)

func newTestServer(t *testing.T, allowed []string) (*Hub, string) {
	t.Helper()
	hub, _ := startHub(t)
	logger, _ := testutil.NewTestLogger(t)
	handler := NewHandler(hub, config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}, allowed, logger)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHandlerUpgradesAndStreamsBroadcasts(t *testing.T) {
	hub, url := newTestServer(t, nil)

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, TypeConnection, hello.Type)
	assert.NotEmpty(t, hello.TraceID)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(context.Background(), TypeDatasetReplaced, map[string]interface{}{"count": 4})

	var update Message
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, TypeDatasetReplaced, update.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": TypeHeartbeat}))
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerOriginCheck(t *testing.T) {
	_, url := newTestServer(t, []string{"http://dashboard.example"})

	t.Run("rejects unknown origin", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("accepts configured origin", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://dashboard.example"}})
		require.NoError(t, err)
		conn.Close()
	})
}

func TestHandlerRejectsWhenHubStopped(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(config.WebSocketConfig{}, nil, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	<-hub.Done()

	srv := httptest.NewServer(NewHandler(hub, config.WebSocketConfig{}, nil, logger))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater))
}
