package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shop-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	mu       sync.Mutex
	open     int
	messages map[string]int
}

func (m *countingMetrics) RecordWebSocketConnect()    { m.mu.Lock(); m.open++; m.mu.Unlock() }
func (m *countingMetrics) RecordWebSocketDisconnect() { m.mu.Lock(); m.open--; m.mu.Unlock() }
func (m *countingMetrics) RecordWebSocketMessage(direction string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		m.messages = map[string]int{}
	}
	m.messages[direction]++
}

func newTestClient(h *Hub, sessionID string) *Client {
	return &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, 1)}
}

func TestHubDeliversPerSession(t *testing.T) {
	m := &countingMetrics{}
	h := NewHub(nil, logger.NewNopLogger(), m)

	tabA := newTestClient(h, "s1")
	tabB := newTestClient(h, "s1")
	other := newTestClient(h, "s2")
	h.Register(tabA)
	h.Register(tabB)
	h.Register(other)
	assert.Equal(t, 2, h.ClientCount("s1"))

	h.Deliver(context.Background(), "s1", []byte(`{"reply":"oi"}`))

	assert.Equal(t, `{"reply":"oi"}`, string(<-tabA.Send))
	assert.Equal(t, `{"reply":"oi"}`, string(<-tabB.Send))
	assert.Empty(t, other.Send)
	assert.Equal(t, 2, m.messages["out"])

	// A full buffer drops the frame instead of blocking.
	h.Deliver(context.Background(), "s2", []byte("1"))
	h.Deliver(context.Background(), "s2", []byte("2"))
	assert.Equal(t, "1", string(<-other.Send))

	h.Unregister(tabA)
	h.Unregister(tabA)
	_, open := <-tabA.Send
	assert.False(t, open)
	assert.Equal(t, 1, h.ClientCount("s1"))
	assert.Equal(t, 2, m.open)

	h.Unregister(tabB)
	h.Unregister(other)
	assert.Zero(t, h.ClientCount("s1"))
	assert.Zero(t, m.open)
}

func TestHandleFrame(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger(), nil)
	c := newTestClient(h, "s1")

	echo := func(_ context.Context, sessionID, text string) ([]byte, error) {
		return []byte(sessionID + ":" + text), nil
	}
	failing := func(context.Context, string, string) ([]byte, error) {
		return nil, errors.New("boom")
	}

	tests := []struct {
		name string
		raw  string
		turn TurnFunc
		want string
	}{
		{name: "json frame", raw: `{"message":"  iphone 12 "}`, turn: echo, want: "s1:iphone 12"},
		{name: "plain text", raw: "quero um drone", turn: echo, want: "s1:quero um drone"},
		{name: "empty", raw: `{"message":""}`, turn: echo, want: `{"error":"message is required"}`},
		{name: "turn error", raw: `{"message":"oi"}`, turn: failing, want: `{"error":"turn failed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.handleFrame(context.Background(), []byte(tt.raw), tt.turn)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestHubRunStopsWithoutRedis(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Run did not return after cancel")
	}
}
