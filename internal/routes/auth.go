package routes

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/identity"
	"github.com/farbour/farbour/internal/profile"
)

// RegisterAuthRoutes wires phone-OTP authentication endpoints. The existence
// check lets the sign-in screen distinguish new from returning users before
// the OTP round trip.
func RegisterAuthRoutes(r fiber.Router, h *identity.Handler, profiles profile.Store, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/otp", rateLimiter, h.SendOTP)
	} else {
		group.Post("/otp", h.SendOTP)
	}
	group.Post("/verify", h.VerifyOTP)
	group.Post("/refresh", h.Refresh)
	group.Post("/signout", h.SignOut)
	group.Get("/oauth/:provider", h.OAuthURL)

	group.Get("/exists", func(c *fiber.Ctx) error {
		phone := strings.TrimSpace(c.Query("phone"))
		if phone == "" {
			return fiber.NewError(http.StatusBadRequest, "phone is required")
		}
		exists, _, err := profiles.ExistsByPhone(c.UserContext(), phone)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "existence check failed")
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"exists": exists})
	})
}
