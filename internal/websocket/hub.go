package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-docstore-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Identifies this instance on the cluster channel so it skips its own messages.
	instanceID string

	// Dedicated Logger
	logger logger.ILogger
}

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.UserID]
			kept := make([]*Client, 0, len(clients))
			for _, c := range clients {
				if c != client {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 {
				delete(h.clients, client.UserID)
			} else {
				h.clients[client.UserID] = kept
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID, "remaining": len(kept)})
		}
	}
}

// Connected reports how many local connections userID has.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func encode(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": data,
	})
}

// Send delivers a typed message to every connection of userID, on this
// instance and, through Redis, on the others.
func (h *Hub) Send(userID uuid.UUID, msgType string, data interface{}) {
	payload, err := encode(msgType, data)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode message", map[string]interface{}{"type": msgType, "error": err.Error()})
		return
	}
	h.deliver(userID, payload)
	h.publish(userID.String(), payload)
}

func (h *Hub) deliver(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	targets := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	h.fanOut(targets, payload)
}

// fanOut runs without the lock. A client whose buffer is full is disconnected;
// its read pump then unregisters it.
func (h *Hub) fanOut(targets []*Client, payload []byte) {
	for _, client := range targets {
		if !client.Enqueue(payload) {
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": client.UserID})
			client.Close()
		}
	}
}

func (h *Hub) publish(target string, payload []byte) {
	if h.rdb == nil {
		return
	}
	msg, _ := json.Marshal(clusterMessage{
		Origin:       h.instanceID,
		TargetUserID: target,
		Message:      payload,
	})
	if err := h.rdb.Publish(context.Background(), clusterChannel, msg).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// subscribeToRedis delivers messages published by other instances. Every
// instance subscribes to the same channel and keeps what it has locally.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleCluster([]byte(msg.Payload))
	}
}

func (h *Hub) handleCluster(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceID {
		return
	}

	uid, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return
	}
	h.deliver(uid, payload.Message)
}
