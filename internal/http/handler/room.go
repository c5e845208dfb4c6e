package handler

import (
	"strings"

	"backend-medcall/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetRooms - ?active=true hanya consultório aktif
func (h *Handler) GetRooms(c *fiber.Ctx) error {
	rooms := h.sess.GetRooms(c.UserContext())
	if c.QueryBool("active") {
		rooms = models.ActiveRooms(rooms)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rooms,
	})
}

// SaveRooms replaces the whole room list. Rooms are deactivated rather
// than removed, so the list is taken as given.
func (h *Handler) SaveRooms(c *fiber.Ctx) error {
	var rooms []models.Room
	if err := c.BodyParser(&rooms); err != nil {
		return badBody(c)
	}

	seen := make(map[string]bool, len(rooms))
	for i := range rooms {
		rooms[i].ID = strings.TrimSpace(rooms[i].ID)
		rooms[i].Number = strings.TrimSpace(rooms[i].Number)
		if rooms[i].ID == "" || rooms[i].Number == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "id e número do consultório são obrigatórios",
			})
		}
		if seen[rooms[i].ID] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "id duplicado: " + rooms[i].ID,
			})
		}
		seen[rooms[i].ID] = true
	}

	if err := h.sess.SaveRooms(c.UserContext(), rooms); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rooms,
	})
}
