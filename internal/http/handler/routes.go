package handler

import (
	"backend-medcall/internal/http/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Routes mounts every endpoint on app.
func (h *Handler) Routes(app *fiber.App) {
	app.Get("/", h.Health)

	app.Post("/api/login", h.Login)
	app.Get("/api/rooms", h.GetRooms)
	app.Get("/api/calls/latest", h.GetLatestCall)
	app.Get("/api/calls/history", h.GetHistory)

	app.Use("/ws", UpgradeCheck)
	app.Get("/ws/display", websocket.New(h.DisplayWebSocket))

	// Base API (semua wajib login)
	api := app.Group("/api", middleware.JWTAuth(h.secret, h.sess.GetUsers))

	api.Post("/logout", h.Logout)
	api.Get("/me", h.Me)
	api.Get("/users", h.GetUsers)
	api.Put("/rooms", h.SaveRooms)
	api.Get("/stats", h.GetStats)

	// Queue
	api.Get("/queue", h.GetQueue)
	api.Post("/queue", h.RegisterPatient)
	api.Delete("/queue/:id", h.RemoveFromQueue)

	// Calls
	api.Post("/calls", h.CallManual)
	api.Post("/calls/next", h.CallNext)
	api.Post("/calls/:id/recall", h.Recall)
}
