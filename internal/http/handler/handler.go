package handler

import (
	"errors"
	"log"
	"time"

	"backend-medcall/internal/app"
	"backend-medcall/internal/dispatch"
	"backend-medcall/internal/queue"
	"backend-medcall/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

// Handler - semua endpoint HTTP berbagi satu session
type Handler struct {
	sess   *app.Session
	hub    *realtime.Hub
	secret string
	ttl    time.Duration

	now func() time.Time
}

func New(sess *app.Session, hub *realtime.Hub, secret string, ttl time.Duration) *Handler {
	return &Handler{
		sess:   sess,
		hub:    hub,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Health - GET /
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "MedCall API running",
		"session": h.sess.ID,
	})
}

// fail maps domain errors to a status in the usual error shape.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, queue.ErrNameRequired), errors.Is(err, dispatch.ErrNameRequired):
		status, msg = fiber.StatusBadRequest, "Nome do paciente é obrigatório"
	case errors.Is(err, queue.ErrRoomRequired), errors.Is(err, dispatch.ErrRoomRequired):
		status, msg = fiber.StatusBadRequest, "Consultório é obrigatório"
	case errors.Is(err, dispatch.ErrQueueEmpty):
		status, msg = fiber.StatusNotFound, "Nenhum paciente aguardando"
	case errors.Is(err, dispatch.ErrCallNotFound):
		status, msg = fiber.StatusNotFound, "Chamada não encontrada"
	default:
		log.Printf("[server] %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Invalid request body",
	})
}
