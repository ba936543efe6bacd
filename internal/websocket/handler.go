package websocket

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"productpulse/internal/config"
	"productpulse/internal/infrastructure"
)

// Handler upgrades dashboard requests and attaches them to a hub
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	origins  map[string]struct{}
	logger   *slog.Logger
}

// NewHandler creates the upgrade endpoint. Same-host origins are always
// accepted; cross-origin requests must appear in allowedOrigins.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Handler{
		hub:     hub,
		origins: make(map[string]struct{}, len(allowedOrigins)),
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	for _, origin := range allowedOrigins {
		h.origins[origin] = struct{}{}
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	if _, ok := h.origins[origin]; ok {
		return true
	}

	h.logger.WarnContext(r.Context(), "websocket origin rejected",
		slog.String("origin", origin),
		slog.String("host", r.Host))
	return false
}

// ServeHTTP performs the upgrade and starts the client pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)
	if traceID == "" {
		traceID = middleware.GetReqID(ctx)
	}
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error response.
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	client := NewClient(h.hub, WrapConn(conn), traceID)
	if err := h.hub.Register(ctx, client); err != nil {
		h.logger.WarnContext(ctx, "websocket registration failed", slog.String("error", err.Error()))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"))
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
