package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/job"
)

// RegisterJobRoutes wires job posting and discovery endpoints.
func RegisterJobRoutes(r fiber.Router, h *job.Handler) {
	r.Post("/jobs", h.Create)
	r.Get("/jobs", h.ListOpen)
	r.Get("/jobs/mine", h.ListMine)
	r.Get("/jobs/:id", h.Get)
	r.Patch("/jobs/:id", h.Update)
	r.Post("/jobs/:id/status", h.Transition)
}
