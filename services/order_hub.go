package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	hubWriteTimeout = 5 * time.Second
	// hubSendBuffer is how many events a client may fall behind before it is dropped
	hubSendBuffer = 32
)

// OrderHub fans order events out to connected WebSocket clients. Each client
// has its own writer goroutine fed by a buffered channel, so Publish never
// waits on the network. Delivery is best effort: a client whose buffer is
// full or whose write fails is dropped.
type OrderHub struct {
	mu      sync.Mutex
	clients map[*hubClient]struct{}
	logger  *zap.Logger
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

var orderHubInstance *OrderHub

// NewOrderHub creates a hub with no clients
func NewOrderHub(logger *zap.Logger) *OrderHub {
	return &OrderHub{
		clients: make(map[*hubClient]struct{}),
		logger:  logger,
	}
}

// InitOrderHub installs the process-wide hub
func InitOrderHub(logger *zap.Logger) *OrderHub {
	orderHubInstance = NewOrderHub(logger)
	return orderHubInstance
}

// GetOrderHub returns the process-wide hub, or nil before InitOrderHub
func GetOrderHub() *OrderHub {
	return orderHubInstance
}

// SetOrderHub sets the hub instance (primarily for testing)
func SetOrderHub(hub *OrderHub) {
	orderHubInstance = hub
}

// Serve registers conn and blocks reading from it until the peer goes away.
// Incoming messages are discarded.
func (h *OrderHub) Serve(conn *websocket.Conn) {
	client := &hubClient{conn: conn, send: make(chan []byte, hubSendBuffer)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("order stream client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(client)

	defer h.drop(client)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish queues event for every connected client. A nil hub ignores events.
func (h *OrderHub) Publish(event OrderEvent) {
	if h == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode order event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("order stream client is too slow, dropping it", zap.String("type", event.Type))
			h.removeLocked(c)
			_ = c.conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *OrderHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *OrderHub) drop(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked unregisters c and closes its queue; h.mu must be held
func (h *OrderHub) removeLocked(c *hubClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// writePump drains the client's queue until it is closed or a write fails
func (h *OrderHub) writePump(c *hubClient) {
	defer func() { _ = c.conn.Close() }()
	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout)); err != nil {
			h.drop(c)
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("dropping order stream client", zap.Error(err))
			h.drop(c)
			return
		}
	}
}
