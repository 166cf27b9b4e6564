package middleware

import (
	"errors"
	"strings"

	"fishlog/internal/logging"
	"fishlog/internal/models"
	"fishlog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

const userLocal = "user"

// Session resolves the request's session token into a user stored in c.Locals.
// Requests without a valid token pass through anonymously. A storage failure while
// resolving the session fails the request.
func Session(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return c.Next()
		}

		user, err := authService.ResolveSession(token)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				logging.Error().Err(err).Str("path", c.Path()).Msg("session lookup failed")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not resolve session",
					"error":   err.Error(),
				})
			}
			logging.Debug().Err(err).Str("path", c.Path()).Msg("session rejected")
			return c.Next()
		}
		c.Locals(userLocal, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by Session, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	return user
}

func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie
	}
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
