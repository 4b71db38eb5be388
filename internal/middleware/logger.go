package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccessLog writes one structured line per request after the handler chain
// finishes, carrying the correlation id set by RequestID.
func AccessLog(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		id, _ := c.Locals(CtxRequestID).(string)
		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Int("bytes", len(c.Response().Body())),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		log.Info("http request", fields...)

		return err
	}
}
