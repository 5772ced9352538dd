package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/linelab/linelab/pkg/logger"
)

// Event types pushed to dashboard clients.
const (
	EventRunCompleted = "run_completed"
	EventStatusUpdate = "status_update"
)

// Event is one dashboard notification
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Marshal converts an event to JSON bytes
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// subscriber is one connected dashboard socket. Its outbound queue is
// buffered; a subscriber that cannot keep up loses events rather than
// stalling the hub.
type subscriber struct {
	id    string
	conn  *websocket.Conn
	queue chan []byte
}

// WebSocketHub fans events out to every connected dashboard. All client
// bookkeeping happens on the Run goroutine via the attach/detach channels.
type WebSocketHub struct {
	subscribers map[*subscriber]struct{}
	events      chan Event
	attach      chan *subscriber
	detach      chan *subscriber
	logger      *logger.Logger
	mu          sync.RWMutex
}

// NewWebSocketHub creates a hub; call Run to start delivery
func NewWebSocketHub(log *logger.Logger) *WebSocketHub {
	return &WebSocketHub{
		subscribers: make(map[*subscriber]struct{}),
		events:      make(chan Event, 256),
		attach:      make(chan *subscriber),
		detach:      make(chan *subscriber),
		logger:      log,
	}
}

// Run delivers events until ctx is cancelled, then closes every
// subscriber queue.
func (h *WebSocketHub) Run(ctx context.Context) {
	for {
		select {
		case sub := <-h.attach:
			h.mu.Lock()
			h.subscribers[sub] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("Dashboard client connected",
				logger.String("client_id", sub.id))

		case sub := <-h.detach:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.queue)
			}
			h.mu.Unlock()
			h.logger.Debug("Dashboard client disconnected",
				logger.String("client_id", sub.id))

		case event := <-h.events:
			payload, err := event.Marshal()
			if err != nil {
				h.logger.Error("Failed to marshal event", logger.Error(err))
				continue
			}
			h.mu.RLock()
			for sub := range h.subscribers {
				select {
				case sub.queue <- payload:
				default:
					// Slow client; drop this event for it
					h.logger.Warn("Dashboard client queue full, dropping event",
						logger.String("client_id", sub.id),
						logger.String("event_type", event.Type))
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			h.mu.Lock()
			for sub := range h.subscribers {
				close(sub.queue)
			}
			h.subscribers = make(map[*subscriber]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast queues an event for delivery to all subscribers. A full
// event channel drops the event; live updates are advisory.
func (h *WebSocketHub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.events <- event:
	default:
		h.logger.Warn("Event channel full, dropping event",
			logger.String("event_type", event.Type))
	}
}

// Publish implements studio.EventPublisher so completed runs reach the
// dashboard live.
func (h *WebSocketHub) Publish(eventType string, data map[string]interface{}) {
	h.Broadcast(Event{Type: eventType, Timestamp: time.Now(), Data: data})
}

// BroadcastStatusUpdate pushes a service status change to all dashboards
func (h *WebSocketHub) BroadcastStatusUpdate(status string, version string) {
	h.Broadcast(Event{
		Type:      EventStatusUpdate,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"status":  status,
			"version": version,
		},
	})
}

// Handler upgrades HTTP requests to websocket subscriptions
func (h *WebSocketHub) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
			return
		}
		sub := &subscriber{id: r.RemoteAddr, conn: conn, queue: make(chan []byte, 256)}
		h.attach <- sub
		go h.readUntilClose(sub)
		go h.writeQueue(sub)
	})
}

// readUntilClose drains inbound frames; the dashboard sends nothing we
// act on, but a read error is how we learn the socket closed.
func (h *WebSocketHub) readUntilClose(sub *subscriber) {
	defer func() {
		h.detach <- sub
		_ = sub.conn.Close()
	}()
	sub.conn.SetReadLimit(1024)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHub) writeQueue(sub *subscriber) {
	for payload := range sub.queue {
		_ = sub.conn.WriteMessage(websocket.TextMessage, payload)
	}
}

// GetClientCount returns the number of connected dashboards
func (h *WebSocketHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
