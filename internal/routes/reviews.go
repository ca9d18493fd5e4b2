package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/review"
)

// RegisterReviewRoutes wires review endpoints.
func RegisterReviewRoutes(r fiber.Router, h *review.Handler) {
	r.Post("/reviews", h.Create)
	r.Get("/profiles/:id/reviews", h.ListForUser)
}
