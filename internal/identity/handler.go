package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes authentication HTTP endpoints.
type Handler struct {
	provider *Provider
}

// NewHandler builds an auth HTTP handler.
func NewHandler(provider *Provider) *Handler {
	return &Handler{provider: provider}
}

type otpRequest struct {
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID            string `json:"id"`
	Phone         string `json:"phone"`
	Name          string `json:"name"`
	PhoneVerified bool   `json:"phone_verified"`
}

// SendOTP requests a one-time code for the supplied phone number.
func (h *Handler) SendOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return fiber.NewError(http.StatusBadRequest, "phone is required")
	}
	meta := Metadata{Name: strings.TrimSpace(req.Name), UserType: req.UserType}
	if err := h.provider.SendOTP(c.UserContext(), phone, meta); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not send code")
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"status": "code_sent"})
}

// VerifyOTP exchanges a code for a session.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, user, err := h.provider.VerifyOTP(c.UserContext(), strings.TrimSpace(req.Phone), strings.TrimSpace(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, ErrTooManyAttempts):
			return fiber.NewError(http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrCodeMismatch), errors.Is(err, ErrCodeExpired), errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired code")
		default:
			return fiber.NewError(http.StatusInternalServerError, "verification failed")
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"session": session,
		"user": userResponse{
			ID:            user.ID,
			Phone:         user.Phone,
			Name:          user.Name,
			PhoneVerified: user.PhoneVerified,
		},
	})
}

// Refresh rotates a refresh token into a new session pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.provider.RefreshSession(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid refresh token")
	}
	return c.Status(http.StatusOK).JSON(session)
}

// SignOut revokes the bearer's outstanding tokens. Always returns 204.
func (h *Handler) SignOut(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token != "" {
		if err := h.provider.SignOut(c.UserContext(), token); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "sign out failed")
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

// OAuthURL returns the provider redirect URL for browser-based flows.
func (h *Handler) OAuthURL(c *fiber.Ctx) error {
	url, err := h.provider.OAuthURL(c.Params("provider"), c.Query("redirect"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"url": url})
}

func bearerToken(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}
