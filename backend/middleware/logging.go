package middleware

import (
	"time"

	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		kv := []interface{}{
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
		}
		if id := UserID(c); id != 0 {
			kv = append(kv, "user_id", id)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request", append(kv, "error", err)...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request", kv...)
		default:
			logger.Info("request", kv...)
		}
		return err
	}
}
