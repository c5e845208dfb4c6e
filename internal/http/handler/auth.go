package handler

import (
	"log"

	"backend-medcall/internal/auth"
	"backend-medcall/internal/config"
	"backend-medcall/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Usuário e senha são obrigatórios",
		})
	}

	user, err := auth.Login(h.sess.GetUsers(c.UserContext()), req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	token, err := config.GenerateToken(h.secret, h.ttl, user)
	if err != nil {
		log.Printf("[auth] token for %s: %v", user.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	log.Printf("[auth] %s logged in", user.Username)
	return c.JSON(models.LoginResponse{
		Token: token,
		User:  models.ToUserResponse(user),
	})
}

// Logout - token stateless, client cukup membuang token
func (h *Handler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Logout realizado",
	})
}
