package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade lets a request through to the websocket handler only when
// it is an upgrade attempt for a hosted game by an identified client. The ids
// are copied to wsGameID and wsClientID, which survive the upgrade.
func WebSocketUpgrade(gameExists func(gameID string) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		gameID := c.Params("gameId")
		if gameID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "game ID is required",
			})
		}
		if !gameExists(gameID) {
			log.Debugw("upgrade refused for unknown game", "game", gameID)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "game not found",
			})
		}

		// set by EnsureClientID
		clientID, _ := c.Locals("clientID").(string)
		if clientID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "client ID is required",
			})
		}

		c.Locals("wsGameID", gameID)
		c.Locals("wsClientID", clientID)
		return c.Next()
	}
}
