package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const ClientIDHeader = "X-Client-ID"

// EnsureClientID identifies the client behind a request. The id comes from
// the X-Client-ID header or the clientId query parameter; a fresh one is
// issued and echoed back when neither is present.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("clientID") != nil {
			return c.Next()
		}

		clientID := c.Get(ClientIDHeader)
		if clientID == "" {
			clientID = c.Query("clientId")
		}
		if clientID == "" {
			clientID = uuid.New().String()
			log.Debugw("issued client id", "client", clientID, "path", c.Path())
		}

		c.Set(ClientIDHeader, clientID)
		c.Locals("clientID", clientID)
		return c.Next()
	}
}
