package profile

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes profile HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler builds a profile HTTP handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type profileResponse struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	UserType      UserType      `json:"user_type"`
	AvatarURL     string        `json:"avatar_url,omitempty"`
	Bio           string        `json:"bio,omitempty"`
	Location      *Location     `json:"location,omitempty"`
	Skills        []string      `json:"skills,omitempty"`
	Availability  *Availability `json:"availability,omitempty"`
	Rating        float64       `json:"rating"`
	TotalRatings  int           `json:"total_ratings"`
	CompletedJobs int           `json:"completed_jobs"`
	Status        WorkerStatus  `json:"status,omitempty"`
}

func toResponse(p Profile) profileResponse {
	return profileResponse{
		ID:            p.ID,
		Name:          p.Name,
		Phone:         p.Phone,
		UserType:      p.UserType,
		AvatarURL:     p.AvatarURL,
		Bio:           p.Bio,
		Location:      p.Location,
		Skills:        p.Skills,
		Availability:  p.Availability,
		Rating:        p.Rating,
		TotalRatings:  p.TotalRatings,
		CompletedJobs: p.CompletedJobs,
		Status:        p.Status,
	}
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}
	p, err := h.store.Get(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "profile not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "profile lookup failed")
	}
	return c.Status(http.StatusOK).JSON(toResponse(p))
}

type updateRequest struct {
	Name         *string       `json:"name"`
	UserType     *UserType     `json:"user_type"`
	AvatarURL    *string       `json:"avatar_url"`
	Bio          *string       `json:"bio"`
	Location     *Location     `json:"location"`
	Skills       []string      `json:"skills"`
	Availability *Availability `json:"availability"`
	Status       *WorkerStatus `json:"status"`
}

// UpdateMe applies a partial update to the authenticated user's profile and
// returns the fresh record.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserType != nil && !req.UserType.Valid() {
		return fiber.NewError(http.StatusBadRequest, "unknown user type")
	}
	update := Update{
		Name:         req.Name,
		UserType:     req.UserType,
		AvatarURL:    req.AvatarURL,
		Bio:          req.Bio,
		Location:     req.Location,
		Skills:       req.Skills,
		Availability: req.Availability,
		Status:       req.Status,
	}
	if err := h.store.Update(c.UserContext(), uid, update); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "profile not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "profile update failed")
	}
	p, err := h.store.Get(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "profile lookup failed")
	}
	return c.Status(http.StatusOK).JSON(toResponse(p))
}

// Get returns a profile by id, for viewing other marketplace users.
func (h *Handler) Get(c *fiber.Ctx) error {
	p, err := h.store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "profile not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "profile lookup failed")
	}
	return c.Status(http.StatusOK).JSON(toResponse(p))
}
