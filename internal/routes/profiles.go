package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/earnings"
	"github.com/farbour/farbour/internal/profile"
)

// RegisterProfileRoutes wires profile endpoints plus the worker earnings
// summary.
func RegisterProfileRoutes(r fiber.Router, h *profile.Handler, ledger earnings.Ledger) {
	r.Get("/me", h.Me)
	r.Patch("/me", h.UpdateMe)
	r.Get("/profiles/:id", h.Get)

	r.Get("/me/earnings", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		total, err := ledger.Total(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "earnings lookup failed")
		}
		entries, err := ledger.Entries(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "earnings lookup failed")
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"worker_id": uid,
			"total":     total,
			"entries":   entries,
		})
	})
}
