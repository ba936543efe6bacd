package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"productpulse/internal/config"
	"productpulse/internal/infrastructure"
)

// Message types pushed to dashboard clients
const (
	TypeConnection      = "connection"
	TypeDatasetReplaced = "dataset:replaced"
	TypeHeartbeat       = "heartbeat"
)

const (
	broadcastQueueSize = 64
	clientQueueSize    = 256

	defaultPongWait = 60 * time.Second
)

// ErrHubStopped is returned when registering with a hub whose Run loop has exited
var ErrHubStopped = errors.New("websocket hub stopped")

// Message is the envelope of every frame the hub sends
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Stats is a point-in-time view of hub activity
type Stats struct {
	Clients         int   `json:"clients"`
	MessagesSent    int64 `json:"messages_sent"`
	MessagesDropped int64 `json:"messages_dropped"`
}

// Hub maintains the set of connected dashboards and fans broadcasts out to them.
// All mutation of the client set happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	mu sync.RWMutex

	pongWait   time.Duration
	pingPeriod time.Duration

	logger  *slog.Logger
	metrics *Metrics

	sent    atomic.Int64
	dropped atomic.Int64
}

// NewHub creates a hub. metrics may be nil.
func NewHub(cfg config.WebSocketConfig, metrics *Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastQueueSize),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// On return every remaining client is disconnected.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	h.logger.InfoContext(ctx, "hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub shutting down", slog.Int("clients", h.ClientCount()))
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "closed")

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register hands a client to the Run loop
func (h *Hub) Register(ctx context.Context, client *Client) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every connected client. It never blocks:
// when the hub is stopped or its queue is full the message is dropped.
func (h *Hub) Broadcast(ctx context.Context, messageType string, data interface{}) {
	payload, err := json.Marshal(Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   infrastructure.GetTraceID(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal broadcast",
			slog.String("type", messageType),
			slog.String("error", err.Error()))
		return
	}

	select {
	case <-h.done:
		h.logger.DebugContext(ctx, "broadcast after hub stopped", slog.String("type", messageType))
		return
	default:
	}

	select {
	case h.broadcast <- payload:
	default:
		h.dropped.Add(1)
		h.metrics.recordDropped(ctx, "broadcast")
		h.logger.WarnContext(ctx, "broadcast queue full, dropping message",
			slog.String("type", messageType))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns counters for the health endpoint
func (h *Hub) Stats() Stats {
	return Stats{
		Clients:         h.ClientCount(),
		MessagesSent:    h.sent.Load(),
		MessagesDropped: h.dropped.Load(),
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.recordConnect(ctx)
	h.logger.InfoContext(ctx, "client registered",
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr),
		slog.Int("total_clients", count))

	hello, err := json.Marshal(Message{
		Type: TypeConnection,
		Data: map[string]string{
			"status":    "connected",
			"client_id": client.id,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   client.traceID,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- hello:
	default:
		h.logger.WarnContext(ctx, "client buffer full, connection message not sent",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	lifetime := time.Since(client.connectedAt)
	h.metrics.recordDisconnect(ctx, lifetime)
	h.logger.InfoContext(ctx, "client unregistered",
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", lifetime),
		slog.Int("total_clients", count))
}

func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			h.sent.Add(1)
		default:
			slow = append(slow, client)
		}
	}

	for _, client := range slow {
		h.dropped.Add(1)
		h.metrics.recordDropped(client.context(), "client")
		h.removeClient(client, "send buffer full")
	}

	h.logger.Debug("broadcast delivered",
		slog.Int("clients", len(clients)),
		slog.Int("disconnected", len(slow)),
		slog.Int("payload_size", len(message)))
}

func (h *Hub) shutdown() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.removeClient(client, "hub stopped")
	}
}
