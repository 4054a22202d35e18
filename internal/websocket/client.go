package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"shop-assistant-be/internal/dto"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048
	sendBuffer     = 32
)

// TurnFunc runs one turn and returns the JSON frame to send back.
type TurnFunc func(ctx context.Context, sessionID, text string) ([]byte, error)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID associated with this connection
	SessionID string

	// Buffered channel of outbound messages.
	Send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{Hub: hub, Conn: conn, SessionID: sessionID, Send: make(chan []byte, sendBuffer)}
}

// readPump reads chat frames and runs them through turn one at a time, so a
// connection never has two turns in flight.
func (c *Client) readPump(ctx context.Context, turn TurnFunc) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WebSocket", "Unexpected close", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
			}
			return
		}
		if c.Hub.metrics != nil {
			c.Hub.metrics.RecordWebSocketMessage("in")
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		frame := c.handleFrame(ctx, raw, turn)
		if frame != nil {
			c.Hub.Deliver(ctx, c.SessionID, frame)
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, raw []byte, turn TurnFunc) []byte {
	var in dto.WSChatMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		// Plain text frames are accepted as the message itself.
		in.Message = string(raw)
	}
	in.Message = strings.TrimSpace(in.Message)
	if in.Message == "" {
		return errorFrame("message is required")
	}

	out, err := turn(ctx, c.SessionID, in.Message)
	if err != nil {
		c.Hub.logger.Error("WebSocket", "Turn failed", map[string]interface{}{
			"session_id": c.SessionID,
			"error":      err.Error(),
		})
		return errorFrame("turn failed")
	}
	return out
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One frame per reply; clients parse each frame as a JSON document.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorFrame(msg string) []byte {
	data, _ := json.Marshal(dto.WSError{Error: msg})
	return data
}
