package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"shop-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "assistant_session_events"

// ConnectionMetrics receives connection and message counts. *metrics.Metrics satisfies it.
type ConnectionMetrics interface {
	RecordWebSocketConnect()
	RecordWebSocketDisconnect()
	RecordWebSocketMessage(direction string)
}

// Hub tracks open chat connections per session. A session may be open in several
// tabs, possibly on other instances; replies are mirrored to all of them.
type Hub struct {
	// Registered clients map: SessionID -> open connections
	clients map[string][]*Client
	mu      sync.RWMutex

	// Redis connection for cross-instance delivery, nil when running alone
	rdb        *redis.Client
	instanceID string

	logger  logger.ILogger
	metrics ConnectionMetrics
}

func NewHub(rdb *redis.Client, log logger.ILogger, m ConnectionMetrics) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
		metrics:    m,
	}
}

type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// Run relays deliveries published by other instances until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}

	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(payload.SessionID, payload.Message)
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.SessionID] = append(h.clients[c.SessionID], c)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordWebSocketConnect()
	}
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": c.SessionID})
}

// Unregister removes c and closes its send buffer. Calling it twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.SessionID]
	for i, existing := range clients {
		if existing != c {
			continue
		}
		h.clients[c.SessionID] = append(clients[:i], clients[i+1:]...)
		close(c.Send)
		if h.metrics != nil {
			h.metrics.RecordWebSocketDisconnect()
		}
		break
	}
	if len(h.clients[c.SessionID]) == 0 {
		delete(h.clients, c.SessionID)
	}
}

// Deliver sends data to every connection of the session, here and on other instances.
func (h *Hub) Deliver(ctx context.Context, sessionID string, data []byte) {
	h.deliverLocal(sessionID, data)

	if h.rdb == nil {
		return
	}
	raw, err := json.Marshal(clusterMessage{Origin: h.instanceID, SessionID: sessionID, Message: data})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, clusterChannel, raw).Err(); err != nil {
		h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// ClientCount is the number of local connections open for the session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) deliverLocal(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
			if h.metrics != nil {
				h.metrics.RecordWebSocketMessage("out")
			}
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
		}
	}
}
