package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/internal/config"
	"productpulse/internal/shared/testutil"
)

func TestClientWritePumpDeliversAndCloses(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(config.WebSocketConfig{}, nil, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	conn := newMockConnection()
	client := NewClient(hub, conn, "trace-w")
	require.NoError(t, hub.Register(context.Background(), client))

	pumpDone := make(chan struct{})
	go func() {
		client.WritePump()
		close(pumpDone)
	}()

	require.Eventually(t, func() bool { return len(conn.frames()) >= 1 }, time.Second, 5*time.Millisecond)
	first := conn.frames()[0]
	assert.Equal(t, websocket.TextMessage, first.Type)
	var msg Message
	require.NoError(t, json.Unmarshal(first.Data, &msg))
	assert.Equal(t, TypeConnection, msg.Type)

	cancel()
	select {
	case <-pumpDone:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop after hub shutdown")
	}

	frames := conn.frames()
	assert.Equal(t, websocket.CloseMessage, frames[len(frames)-1].Type)
	assert.True(t, conn.isClosed())
}

func TestClientReadPumpUnregistersOnClose(t *testing.T) {
	hub, _ := startHub(t)

	conn := newMockConnection()
	client := NewClient(hub, conn, "")
	require.NoError(t, hub.Register(context.Background(), client))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	pumpDone := make(chan struct{})
	go func() {
		client.ReadPump()
		close(pumpDone)
	}()

	conn.inbound <- []byte(`{"type":"heartbeat"}`)
	conn.inbound <- []byte(`not json`)
	require.Eventually(t, func() bool { return len(conn.inbound) == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.Close())
	select {
	case <-pumpDone:
	case <-time.After(time.Second):
		t.Fatal("read pump did not stop")
	}

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	conn.mu.Lock()
	assert.Equal(t, int64(maxMessageSize), conn.readLimit)
	assert.NotNil(t, conn.pong)
	conn.mu.Unlock()
}
