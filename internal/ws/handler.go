package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/foliolabs/folio/internal/chat"
	"github.com/foliolabs/folio/internal/event"
	"go.uber.org/zap"
)

// EventSource is the slice of the event bus the handler needs
// (consumer-side interface).
type EventSource interface {
	Subscribe(topic string, handler event.Handler) (unsubscribe func())
}

// Handler provides the WebSocket endpoint for real-time chat activity.
type Handler struct {
	hub    *Hub
	bus    EventSource
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to chat events.
func NewHandler(bus EventSource, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		bus:    bus,
		logger: logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ws/chat", h.handleChatStream)
}

// handleChatStream upgrades the connection to WebSocket and streams chat
// activity events.
func (h *Handler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The feed is read-only public telemetry; any origin may subscribe.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan Message, 256),
		logger: h.logger,
	}

	h.hub.Register(client)

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until client disconnects.
	client.readPump(ctx)

	// Client disconnected -- stop write pump and unregister.
	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards completed chat requests to all connected
// WebSocket clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(chat.TopicChatCompleted, func(_ context.Context, ev event.Event) {
		completed, ok := ev.Payload.(chat.CompletedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageChatActivity,
			Timestamp: ev.Timestamp,
			Data: ChatActivityData{
				Intent:     completed.Intent,
				Metric:     completed.Metric,
				Source:     completed.Source,
				Cached:     completed.Cached,
				Confidence: completed.Confidence,
				Latency:    completed.Latency,
			},
		})
	})

	h.logger.Info("subscribed to chat events for WebSocket broadcasting")
}
