package server

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"stash/internal/middleware"
	"stash/internal/notifications"
	"stash/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketViewsHandler handles GET /api/ws/views/:username. Visitors on a
// public page connect here to receive live view-counter updates while the
// page is open. No authentication: the counter is public information.
func (s *Server) WebSocketViewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		username := strings.ToLower(strings.TrimSpace(c.Params("username")))
		if err := validation.ValidateUsername(username); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		c.Locals("username", username)

		return websocket.New(func(conn *websocket.Conn) {
			middleware.ActiveWebSockets.Inc()
			defer middleware.ActiveWebSockets.Dec()

			username := conn.Locals("username").(string)

			if s.viewHub == nil {
				_ = conn.Close()
				return
			}

			client, err := s.viewHub.Register(username, conn)
			if err != nil {
				log.Printf("WebSocket views: failed to register viewer of %s: %v", username, err)
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
				_ = conn.Close()
				return
			}

			// Send the current counter immediately so the page doesn't wait
			// for the next visit to show a number.
			s.sendCurrentViewCount(client, username)

			go client.WritePump()
			client.ReadPump()
		})(c)
	}
}

func (s *Server) sendCurrentViewCount(client *notifications.Client, username string) {
	ctx := context.Background()
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return
	}
	count, err := s.viewRepo.Get(ctx, profile.UserID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(notifications.ViewCountPayload{
		Type:      "view_count",
		Username:  username,
		ViewCount: count,
	})
	if err != nil {
		return
	}
	client.TrySend(payload)
}
