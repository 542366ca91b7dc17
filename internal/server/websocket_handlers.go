package server

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles WebSocket connections for the engagement event
// stream. Authentication is optional: anonymous readers receive broadcast
// events only, authenticated readers also receive their personal notices
// (e.g. moderation decisions on their comments). Browsers cannot set headers
// on WebSocket upgrades, so the token may also arrive as a query parameter.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		// Send welcome message
		welcome := map[string]interface{}{
			"type": "connected",
			"payload": map[string]interface{}{
				"user_id":       userID,
				"authenticated": userID != 0,
			},
		}
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		userID, ok := s.optionalUserID(c)
		if !ok {
			if token := c.Query("token"); token != "" {
				userID, _ = s.validateToken(c, token)
			}
		}
		c.Locals("userID", userID)

		return upgrade(c)
	}
}
