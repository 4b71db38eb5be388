package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/events"
)

// WSHub streams campaign lifecycle events to connected dashboards.
type WSHub struct {
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections []*websocket.Conn
}

func NewWSHub(subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{subscriber: subscriber, log: log}
}

func (h *WSHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamPosting, func(event events.Event) {
		h.broadcast(event)
	})
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.connections = append(h.connections, conn)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		for i, c := range h.connections {
			if c == conn {
				h.connections = append(h.connections[:i], h.connections[i+1:]...)
				break
			}
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
