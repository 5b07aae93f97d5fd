package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"learning-hub-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func registerAndWait(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	hub.register <- client
	waitFor(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[client.ChannelID]) > 0
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSendDeliversToRegisteredClients(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := &Client{Hub: hub, ChannelID: "task-1", Send: make(chan []byte, 1)}
	registerAndWait(t, hub, client)

	hub.Send("task-1", events.BaseEvent{
		Type:       "QUERY_COMPLETED",
		Data:       map[string]interface{}{"task_id": "task-1"},
		OccurredAt: time.Now(),
	})

	select {
	case raw := <-client.Send:
		var msg map[string]interface{}
		assert.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "QUERY_COMPLETED", msg["type"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected a delivered message")
	}
}

func TestSendDropsSlowClientWithoutClosingTwice(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	// Unbuffered Send with no reader forces the drop path.
	slow := &Client{Hub: hub, ChannelID: "task-2", Send: make(chan []byte)}
	registerAndWait(t, hub, slow)

	event := events.BaseEvent{
		Type:       "QUERY_COMPLETED",
		Data:       map[string]interface{}{"task_id": "task-2"},
		OccurredAt: time.Now(),
	}
	hub.Send("task-2", event)

	waitFor(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.clients["task-2"]
		return !ok
	})

	// The unregister handler closed Send exactly once.
	_, open := <-slow.Send
	assert.False(t, open)

	// A later send to the drained channel must be a no-op, not a panic.
	hub.Send("task-2", event)
}
