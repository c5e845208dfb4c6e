package handler

import (
	"backend-medcall/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetUsers(c *fiber.Ctx) error {
	users := h.sess.GetUsers(c.UserContext())
	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.ToUserResponses(users),
	})
}

// Me - user dari token
func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":       c.Locals("user_id"),
			"username": c.Locals("username"),
			"role":     c.Locals("role"),
			"roomId":   c.Locals("room_id"),
		},
	})
}
