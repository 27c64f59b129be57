package handlers_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelegend/cogito/web/handlers"
)

func TestWebSocketHub_RejectsUnknownOrigin(t *testing.T) {
	hub := handlers.NewWebSocketHub("localhost:7171")
	defer hub.Stop()

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "http://evil.com")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	w := httptest.NewRecorder()
	hub.ServeHTTP(w, req)

	// The upgrade is refused before any client is registered.
	assert.NotEqual(t, 101, w.Code)
}

func TestWebSocketHub_Broadcast(t *testing.T) {
	hub := handlers.NewWebSocketHub()
	go hub.Run()
	defer hub.Stop()

	received := make(chan []byte, 1)
	mockClient := &handlers.MockClient{
		SendChan: received,
	}

	hub.Register(mockClient)

	// Give the hub time to register the client
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(handlers.ReasoningEvent{
		Type:      "reasoning_complete",
		SessionID: "s1",
		StepCount: 3,
	})

	select {
	case msg := <-received:
		assert.Contains(t, string(msg), "reasoning_complete")
		assert.Contains(t, string(msg), "s1")
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for broadcast message")
	}
}

func TestWebSocketHub_BroadcastToMultipleClients(t *testing.T) {
	hub := handlers.NewWebSocketHub()
	go hub.Run()
	defer hub.Stop()

	a := &handlers.MockClient{SendChan: make(chan []byte, 1)}
	b := &handlers.MockClient{SendChan: make(chan []byte, 1)}
	hub.Register(a)
	hub.Register(b)
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(handlers.KnowledgeEvent{Type: "knowledge_updated", EntityIDs: []string{"ent:1"}})

	for _, c := range []*handlers.MockClient{a, b} {
		select {
		case msg := <-c.SendChan:
			require.Contains(t, string(msg), "knowledge_updated")
		case <-time.After(1 * time.Second):
			t.Fatal("Timeout waiting for broadcast message")
		}
	}
}
