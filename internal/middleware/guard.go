package middleware

import (
	"fishlog/internal/authz"
	"fishlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Guard produces the handler protecting a route that requires the given role.
type Guard func(required models.Role) fiber.Handler

// RoleGuard enforces roles through gate.
func RoleGuard(gate *authz.Gate) Guard {
	return func(required models.Role) fiber.Handler {
		return RequireRole(gate, required)
	}
}

// OpenGuard lets every request through. Used when authentication is disabled.
func OpenGuard() Guard {
	return func(models.Role) fiber.Handler {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
}
