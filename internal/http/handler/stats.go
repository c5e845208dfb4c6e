package handler

import (
	"github.com/gofiber/fiber/v2"
)

// GetStats - ringkasan dashboard admin (hari ini)
func (h *Handler) GetStats(c *fiber.Ctx) error {
	stats := h.sess.Stats(c.UserContext(), h.now())

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
		"date":    h.now().Format("2006-01-02"),
	})
}
