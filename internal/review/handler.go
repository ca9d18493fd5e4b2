package review

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/profile"
)

// Handler exposes review HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a review HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	RevieweeID string `json:"reviewee_id"`
	JobID      string `json:"job_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

type reviewResponse struct {
	ID         string    `json:"id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	JobID      string    `json:"job_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(r Review) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		JobID:      r.JobID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// Create records a review from the authenticated user.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	rev, err := h.service.Create(c.UserContext(), CreateInput{
		ReviewerID: uid,
		RevieweeID: req.RevieweeID,
		JobID:      req.JobID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyReviewed):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, profile.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "reviewee not found")
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toResponse(rev))
}

// ListForUser returns reviews received by a user.
func (h *Handler) ListForUser(c *fiber.Ctx) error {
	reviews, err := h.service.ListForUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "review listing failed")
	}
	out := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toResponse(*r))
	}
	return c.Status(http.StatusOK).JSON(out)
}
