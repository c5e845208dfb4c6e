package middleware

import (
	"context"
	"strings"

	"backend-medcall/internal/auth"
	"backend-medcall/internal/config"
	"backend-medcall/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserSource returns the current user list from the store.
type UserSource func(ctx context.Context) []models.User

func JWTAuth(secret string, users UserSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		claims, err := config.ValidateToken(secret, tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// user yang dinonaktifkan setelah login langsung kehilangan akses
		user, err := auth.CheckActive(users(c.UserContext()), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("role", string(user.Role))
		if user.RoomID != "" {
			c.Locals("room_id", user.RoomID)
		}

		return c.Next()
	}
}
