package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/application"
)

// RegisterApplicationRoutes wires the application lifecycle endpoints.
func RegisterApplicationRoutes(r fiber.Router, h *application.Handler) {
	r.Post("/applications", h.Apply)
	r.Get("/applications/mine", h.ListMine)
	r.Get("/applications/history", h.History)
	r.Get("/workers", h.Workers)
	r.Get("/me/stats", h.Stats)
	r.Get("/jobs/:jobId/applications", h.ListByJob)
	r.Post("/applications/:id/accept", h.Accept)
	r.Post("/applications/:id/reject", h.Reject)
	r.Post("/applications/:id/complete", h.Complete)
}
