package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tablet-fleet-manager/internal/logger"
)

// Event is the envelope pushed to every live observer.
type Event struct {
	Type       string      `json:"type"`
	DeviceID   string      `json:"deviceId,omitempty"`
	DeviceCode string      `json:"deviceCode,omitempty"`
	Data       interface{} `json:"data"`
}

const (
	EventDeviceStatus       = "device_status"
	EventDeviceLocation     = "device_location"
	EventDeviceMetrics      = "device_metrics"
	EventDeviceEvent        = "device_event"
	EventDeviceBorrowStatus = "device_borrow_status"
)

// Conn is the subset of *websocket.Conn the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub keeps the set of live observers and fans derived events out to
// them. Delivery is best-effort and fire-and-forget: a failed send
// removes the observer, there is no replay or backlog.
type Hub struct {
	mu        sync.Mutex
	observers map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{observers: make(map[Conn]struct{})}
}

// Register adds a live observer connection.
func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	h.observers[conn] = struct{}{}
	count := len(h.observers)
	h.mu.Unlock()

	logger.Info("observer registered", zap.Int("observers", count))
}

// Remove drops an observer, closing its connection.
func (h *Hub) Remove(conn Conn) {
	h.mu.Lock()
	_, ok := h.observers[conn]
	if ok {
		delete(h.observers, conn)
	}
	count := len(h.observers)
	h.mu.Unlock()

	if ok {
		_ = conn.Close()
		logger.Info("observer removed", zap.Int("observers", count))
	}
}

// Broadcast serializes the event once and attempts delivery to every
// observer. A failing observer is removed; the rest still get the event.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to serialize fan-out event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]Conn, 0, len(h.observers))
	for conn := range h.observers {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("observer send failed, removing", zap.Error(err))
			h.Remove(conn)
		}
	}
}

// Count returns the number of live observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}
