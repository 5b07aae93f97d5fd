package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

type Hub struct {
	// Registered clients map: channel id -> list of clients. A channel id
	// is a task id; several tabs may wait on the same task.
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ChannelID] = append(h.clients[client.ChannelID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"channel_id": client.ChannelID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ChannelID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ChannelID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ChannelID]) == 0 {
					delete(h.clients, client.ChannelID)
					h.logger.Info("Hub", "Channel drained", map[string]interface{}{"channel_id": client.ChannelID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers an event to every client subscribed to the channel, both
// on this instance and, via Redis, on any other instance.
func (h *Hub) Send(channelID string, event events.Event) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": event.EventType(),
		"data": event.Payload(),
	})

	h.mu.RLock()
	clients, localFound := h.clients[channelID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				// The unregister handler owns the single close of Send.
				h.logger.Warn("Hub", "Client send buffer full, dropping", map[string]interface{}{"channel_id": channelID})
				h.unregister <- client
			}
		}
	}

	// Publish to Redis so instances holding the channel elsewhere deliver too
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_channel_id": channelID,
			"message":           data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetChannelID string          `json:"target_channel_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetChannelID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					h.unregister <- client
				}
			}
		}
	}
}
