package middleware

import (
	"fishlog/internal/authz"
	"fishlog/internal/logging"
	"fishlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole guards a route with a minimum role. It must run after Session.
func RequireRole(gate *authz.Gate, required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		decision, err := gate.Check(user, required)
		if err != nil {
			logging.Error().Err(err).Str("path", c.Path()).Msg("authorization check failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Authorization check failed",
			})
		}

		switch decision {
		case authz.Authorized:
			return c.Next()
		case authz.Unauthenticated:
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="fishlog"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
				"login":   "/login",
			})
		default:
			logging.Info().Str("username", user.Username).Str("role", string(user.Role)).
				Str("required", string(required)).Str("path", c.Path()).Msg("access forbidden")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message":  "Insufficient role",
				"required": string(required),
			})
		}
	}
}
