package handler

import (
	"backend-medcall/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetQueue - ?room_id=r1 untuk antrian satu consultório
func (h *Handler) GetQueue(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var list []models.WaitingPatient
	if roomID := c.Query("room_id"); roomID != "" {
		list = h.sess.Queue.ListForRoom(ctx, roomID)
	} else {
		list = h.sess.GetWaitingList(ctx)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"total":   len(list),
	})
}

func (h *Handler) RegisterPatient(c *fiber.Ctx) error {
	var req models.RegisterPatientRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	patient, err := h.sess.Queue.Register(c.UserContext(), req.Name, req.Priority, req.RoomID)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    patient,
	})
}

// RemoveFromQueue - id yang tidak ada tetap 200
func (h *Handler) RemoveFromQueue(c *fiber.Ctx) error {
	if err := h.sess.RemoveFromQueue(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
