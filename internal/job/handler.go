package job

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/profile"
)

// Handler exposes job HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a job HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Location       profile.Location `json:"location"`
	WagePerDay     int64            `json:"wage_per_day"`
	WorkersNeeded  int              `json:"workers_needed"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	SkillsRequired []string         `json:"skills_required"`
	Publish        bool             `json:"publish"`
}

type jobResponse struct {
	ID                string           `json:"id"`
	FarmerID          string           `json:"farmer_id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Category          string           `json:"category"`
	Location          profile.Location `json:"location"`
	WagePerDay        int64            `json:"wage_per_day"`
	WorkersNeeded     int              `json:"workers_needed"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	SkillsRequired    []string         `json:"skills_required,omitempty"`
	Status            Status           `json:"status"`
	ApplicationsCount int              `json:"applications_count"`
	HiredCount        int              `json:"hired_count"`
	CreatedAt         time.Time        `json:"created_at"`
}

func toResponse(j Job) jobResponse {
	return jobResponse{
		ID:                j.ID,
		FarmerID:          j.FarmerID,
		Title:             j.Title,
		Description:       j.Description,
		Category:          j.Category,
		Location:          j.Location,
		WagePerDay:        j.WagePerDay,
		WorkersNeeded:     j.WorkersNeeded,
		StartDate:         j.StartDate,
		EndDate:           j.EndDate,
		SkillsRequired:    j.SkillsRequired,
		Status:            j.Status,
		ApplicationsCount: j.ApplicationsCount,
		HiredCount:        j.HiredCount,
		CreatedAt:         j.CreatedAt,
	}
}

func toResponses(jobs []Job) []jobResponse {
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toResponse(j))
	}
	return out
}

// Create posts a new job for the authenticated farmer.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	j, err := h.service.Create(c.UserContext(), CreateInput{
		FarmerID:       uid,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Location:       req.Location,
		WagePerDay:     req.WagePerDay,
		WorkersNeeded:  req.WorkersNeeded,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		SkillsRequired: req.SkillsRequired,
		Publish:        req.Publish,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(j))
}

// Get returns a single job.
func (h *Handler) Get(c *fiber.Ctx) error {
	j, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "job not found")
	}
	return c.Status(http.StatusOK).JSON(toResponse(j))
}

// ListOpen returns jobs currently accepting applications.
func (h *Handler) ListOpen(c *fiber.Ctx) error {
	jobs, err := h.service.ListOpen(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "job listing failed")
	}
	return c.Status(http.StatusOK).JSON(toResponses(jobs))
}

// ListMine returns the authenticated farmer's jobs, optionally filtered by
// status.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	jobs, err := h.service.ListByFarmer(c.UserContext(), uid, Status(c.Query("status")))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "job listing failed")
	}
	return c.Status(http.StatusOK).JSON(toResponses(jobs))
}

type updateRequest struct {
	Title          *string           `json:"title"`
	Description    *string           `json:"description"`
	Category       *string           `json:"category"`
	Location       *profile.Location `json:"location"`
	WagePerDay     *int64            `json:"wage_per_day"`
	WorkersNeeded  *int              `json:"workers_needed"`
	StartDate      *time.Time        `json:"start_date"`
	EndDate        *time.Time        `json:"end_date"`
	SkillsRequired []string          `json:"skills_required"`
}

// Update edits a job owned by the authenticated farmer.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	j, err := h.service.Update(c.UserContext(), c.Params("id"), uid, UpdateInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Location:       req.Location,
		WagePerDay:     req.WagePerDay,
		WorkersNeeded:  req.WorkersNeeded,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		SkillsRequired: req.SkillsRequired,
	})
	if err != nil {
		return jobError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(j))
}

type transitionRequest struct {
	Status Status `json:"status"`
}

// Transition moves a job between statuses (publish, complete, cancel).
func (h *Handler) Transition(c *fiber.Ctx) error {
	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	j, err := h.service.Transition(c.UserContext(), c.Params("id"), uid, req.Status)
	if err != nil {
		return jobError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(j))
}

func jobError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "job not found")
	case errors.Is(err, ErrNotOwner):
		return fiber.NewError(http.StatusForbidden, "not the job owner")
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
