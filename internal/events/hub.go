package events

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Client is one connected SSE dashboard subscriber.
type Client struct {
	ID       string
	TenantID string
	Events   chan Event
}

// Hub fans events out to connected dashboard clients, scoped by tenant.
// It implements Dispatcher so services can publish without knowing about
// SSE at all.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Info("sse client registered",
		zap.String("client_id", client.ID),
		zap.Int("total", len(h.clients)),
	)
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Info("sse client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)),
		)
	}
}

// Dispatch sends the event to every client of the same tenant. Slow clients
// are skipped rather than blocking the producing request.
func (h *Hub) Dispatch(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.TenantID != event.TenantID {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, dropping event",
				zap.String("client_id", client.ID),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// Marshal renders the event body for the SSE data line.
func Marshal(event Event) string {
	b, err := json.Marshal(event)
	if err != nil {
		return "{}"
	}
	return string(b)
}
