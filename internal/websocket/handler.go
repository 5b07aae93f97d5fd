package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches a connection to the hub on the given channel.
func ServeWs(hub *Hub, c *websocket.Conn, channelID string) {
	client := &Client{Hub: hub, Conn: c, ChannelID: channelID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
