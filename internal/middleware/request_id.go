package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CtxRequestID keys the correlation id in fiber locals; the access logger
// and handlers read it from there.
const CtxRequestID = "request_id"

const headerRequestID = "X-Request-ID"

// RequestID trusts an inbound X-Request-ID so dashboard calls stay
// correlated across retries, and mints a fresh id otherwise. The id is
// echoed on the response either way.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(CtxRequestID, id)
		c.Set(headerRequestID, id)
		return c.Next()
	}
}
