package application

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farbour/farbour/internal/job"
	"github.com/farbour/farbour/internal/profile"
)

// Handler exposes application HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an application HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type applyRequest struct {
	JobID          string `json:"job_id"`
	CoverNote      string `json:"cover_note"`
	NegotiatedWage int64  `json:"negotiated_wage"`
}

type applicationResponse struct {
	ID              string     `json:"id"`
	JobID           string     `json:"job_id"`
	LaborerID       string     `json:"laborer_id"`
	Status          Status     `json:"status"`
	CoverNote       string     `json:"cover_note,omitempty"`
	NegotiatedWage  int64      `json:"negotiated_wage,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toResponse(a Application) applicationResponse {
	return applicationResponse{
		ID:              a.ID,
		JobID:           a.JobID,
		LaborerID:       a.LaborerID,
		Status:          a.Status,
		CoverNote:       a.CoverNote,
		NegotiatedWage:  a.NegotiatedWage,
		RejectionReason: a.RejectionReason,
		CompletedAt:     a.CompletedAt,
		CreatedAt:       a.CreatedAt,
	}
}

func toResponses(apps []Application) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toResponse(a))
	}
	return out
}

// Apply submits the authenticated laborer's application to a job.
func (h *Handler) Apply(c *fiber.Ctx) error {
	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	app, err := h.service.Apply(c.UserContext(), ApplyInput{
		JobID:          req.JobID,
		LaborerID:      uid,
		CoverNote:      req.CoverNote,
		NegotiatedWage: req.NegotiatedWage,
	})
	if err != nil {
		return applicationError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(app))
}

// ListByJob returns a job's applications to its owning farmer.
func (h *Handler) ListByJob(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	apps, err := h.service.ListByJob(c.UserContext(), c.Params("jobId"), uid)
	if err != nil {
		return applicationError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponses(apps))
}

// ListMine returns the authenticated laborer's applications.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	apps, err := h.service.ListByLaborer(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "application listing failed")
	}
	return c.Status(http.StatusOK).JSON(toResponses(apps))
}

// Accept hires the applicant. Farmer only.
func (h *Handler) Accept(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	app, err := h.service.Accept(c.UserContext(), c.Params("id"), uid)
	if err != nil {
		return applicationError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(app))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject declines the applicant. Farmer only.
func (h *Handler) Reject(c *fiber.Ctx) error {
	var req rejectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	app, err := h.service.Reject(c.UserContext(), c.Params("id"), uid, req.Reason)
	if err != nil {
		return applicationError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(app))
}

// Complete closes out an accepted engagement and records earnings.
func (h *Handler) Complete(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	app, err := h.service.Complete(c.UserContext(), c.Params("id"), uid)
	if err != nil {
		return applicationError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(app))
}

type historyResponse struct {
	ID            string     `json:"id"`
	WorkerID      string     `json:"worker_id"`
	FarmerID      string     `json:"farmer_id"`
	JobID         string     `json:"job_id"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	WagePerDay    int64      `json:"wage_per_day"`
	TotalDays     int        `json:"total_days"`
	TotalEarnings int64      `json:"total_earnings"`
	Status        Status     `json:"status"`
}

// History returns the authenticated worker's engagement history.
func (h *Handler) History(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	entries, err := h.service.ListHistoryByWorker(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "history listing failed")
	}
	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryResponse(e))
	}
	return c.Status(http.StatusOK).JSON(out)
}

func toHistoryResponse(h History) historyResponse {
	return historyResponse{
		ID:            h.ID,
		WorkerID:      h.WorkerID,
		FarmerID:      h.FarmerID,
		JobID:         h.JobID,
		StartDate:     h.StartDate,
		EndDate:       h.EndDate,
		WagePerDay:    h.WagePerDay,
		TotalDays:     h.TotalDays,
		TotalEarnings: h.TotalEarnings,
		Status:        h.Status,
	}
}

type workerSummary struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	AvatarURL    string               `json:"avatar_url,omitempty"`
	Location     *profile.Location    `json:"location,omitempty"`
	Rating       float64              `json:"rating"`
	TotalRatings int                  `json:"total_ratings"`
	Skills       []string             `json:"skills,omitempty"`
	Status       profile.WorkerStatus `json:"status"`
	LastActive   time.Time            `json:"last_active"`
}

type workerResponse struct {
	historyResponse
	Worker workerSummary `json:"worker"`
}

// Workers returns the authenticated farmer's worker roster, optionally
// filtered by the worker's availability status.
func (h *Handler) Workers(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	status := profile.WorkerStatus(c.Query("status"))
	workers, err := h.service.ListWorkers(c.UserContext(), uid, status)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "worker listing failed")
	}
	out := make([]workerResponse, 0, len(workers))
	for _, w := range workers {
		out = append(out, workerResponse{
			historyResponse: toHistoryResponse(w.History),
			Worker: workerSummary{
				ID:           w.Profile.ID,
				Name:         w.Profile.Name,
				AvatarURL:    w.Profile.AvatarURL,
				Location:     w.Profile.Location,
				Rating:       w.Profile.Rating,
				TotalRatings: w.Profile.TotalRatings,
				Skills:       w.Profile.Skills,
				Status:       w.Profile.Status,
				LastActive:   w.Profile.LastActive,
			},
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}

type statsResponse struct {
	ActiveJobs    int `json:"active_jobs"`
	CompletedJobs int `json:"completed_jobs"`
	TotalWorkers  int `json:"total_workers"`
}

// Stats returns the authenticated farmer's dashboard numbers.
func (h *Handler) Stats(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	stats, err := h.service.StatsForFarmer(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "stats lookup failed")
	}
	return c.Status(http.StatusOK).JSON(statsResponse{
		ActiveJobs:    stats.ActiveJobs,
		CompletedJobs: stats.CompletedJobs,
		TotalWorkers:  stats.TotalWorkers,
	})
}

func applicationError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, job.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, job.ErrNotOwner):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyApplied), errors.Is(err, ErrInvalidTransition), errors.Is(err, job.ErrJobClosed):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
