package middleware

import (
	"progresshub/backend/config"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// AuthMiddleware accepts "Authorization: Bearer <token>" or the raw token. Only session
// tokens authenticate; share tokens are good for the public portfolio and nothing else.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return utils.Unauthorized(c, "Unauthorized")
		}

		userID, typ, err := utils.ParseToken(token, cfg.JWTSecret)
		if err != nil || typ != utils.TokenTypeSession {
			return utils.Unauthorized(c, "Unauthorized")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the owner id stored by AuthMiddleware, or 0 outside authenticated routes.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(userIDKey).(uint)
	return id
}
