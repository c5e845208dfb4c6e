package handler

import (
	"backend-medcall/internal/dispatch"
	"backend-medcall/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetLatestCall(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.sess.GetLatestCall(c.UserContext()),
	})
}

// GetHistory - ?room_id=r1&limit=10
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	ctx := c.UserContext()
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}

	var history []models.PatientCall
	if roomID := c.Query("room_id"); roomID != "" {
		history = h.sess.Calls.RoomHistory(ctx, roomID, limit)
	} else {
		history = h.sess.GetHistory(ctx)
		if limit > 0 && len(history) > limit {
			history = history[:limit]
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    history,
	})
}

// CallManual - panggilan dari recepção tanpa antrian
func (h *Handler) CallManual(c *fiber.Ctx) error {
	var req models.ManualCallRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	call, err := h.sess.Calls.CallManual(c.UserContext(), dispatch.ManualCall{
		PatientName:  req.PatientName,
		TicketNumber: req.TicketNumber,
		RoomID:       req.RoomID,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    call,
	})
}

// CallNext - room dari body, kalau kosong pakai room_id user
func (h *Handler) CallNext(c *fiber.Ctx) error {
	var req models.CallNextRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	roomID := req.RoomID
	if roomID == "" {
		roomID, _ = c.Locals("room_id").(string)
	}
	if roomID == "" {
		return fail(c, dispatch.ErrRoomRequired)
	}

	call, err := h.sess.Calls.CallNext(c.UserContext(), roomID)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    call,
	})
}

func (h *Handler) Recall(c *fiber.Ctx) error {
	call, err := h.sess.Calls.Recall(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    call,
	})
}
