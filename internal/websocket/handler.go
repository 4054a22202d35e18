package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs a chat connection for sessionID until the peer goes away.
func ServeWs(ctx context.Context, hub *Hub, c *websocket.Conn, sessionID string, turn TurnFunc) {
	client := NewClient(hub, c, sessionID)
	hub.Register(client)

	go client.writePump()
	client.readPump(ctx, turn) // Run readPump in current goroutine (handler)
}
