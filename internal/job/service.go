package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farbour/farbour/internal/profile"
)

// Service manages job posting lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new job service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to post a job.
type CreateInput struct {
	FarmerID       string
	Title          string
	Description    string
	Category       string
	Location       profile.Location
	WagePerDay     int64
	WorkersNeeded  int
	StartDate      time.Time
	EndDate        time.Time
	SkillsRequired []string
	// Publish posts the job as active immediately instead of draft.
	Publish bool
}

// Create posts a new job.
func (s *Service) Create(ctx context.Context, input CreateInput) (Job, error) {
	if input.Title == "" {
		return Job{}, errors.New("title is required")
	}
	if input.WagePerDay <= 0 {
		return Job{}, errors.New("wage must be positive")
	}
	if input.WorkersNeeded < 1 {
		return Job{}, errors.New("at least one worker is required")
	}
	if input.EndDate.Before(input.StartDate) {
		return Job{}, errors.New("end date precedes start date")
	}

	status := StatusDraft
	if input.Publish {
		status = StatusActive
	}

	now := time.Now().UTC()
	j := Job{
		ID:             uuid.NewString(),
		FarmerID:       input.FarmerID,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		Location:       input.Location,
		WagePerDay:     input.WagePerDay,
		WorkersNeeded:  input.WorkersNeeded,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		SkillsRequired: input.SkillsRequired,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, j); err != nil {
		return Job{}, err
	}
	return j, nil
}

// Get retrieves a job.
func (s *Service) Get(ctx context.Context, id string) (Job, error) {
	return s.repo.Get(ctx, id)
}

// ListByFarmer returns the farmer's jobs, optionally filtered by status.
func (s *Service) ListByFarmer(ctx context.Context, farmerID string, status Status) ([]Job, error) {
	return s.repo.ListByFarmer(ctx, farmerID, status)
}

// ListOpen returns jobs accepting applications, for laborer browsing.
func (s *Service) ListOpen(ctx context.Context) ([]Job, error) {
	return s.repo.ListOpen(ctx)
}

// UpdateInput carries editable job fields; nil members are left untouched.
type UpdateInput struct {
	Title          *string
	Description    *string
	Category       *string
	Location       *profile.Location
	WagePerDay     *int64
	WorkersNeeded  *int
	StartDate      *time.Time
	EndDate        *time.Time
	SkillsRequired []string
}

// Update edits a job's details. Only the owning farmer may edit, and only
// while the job is draft or active.
func (s *Service) Update(ctx context.Context, id, farmerID string, input UpdateInput) (Job, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if j.FarmerID != farmerID {
		return Job{}, ErrNotOwner
	}
	if j.Status != StatusDraft && j.Status != StatusActive {
		return Job{}, fmt.Errorf("%w: cannot edit a %s job", ErrInvalidTransition, j.Status)
	}

	if input.Title != nil {
		j.Title = *input.Title
	}
	if input.Description != nil {
		j.Description = *input.Description
	}
	if input.Category != nil {
		j.Category = *input.Category
	}
	if input.Location != nil {
		j.Location = *input.Location
	}
	if input.WagePerDay != nil {
		j.WagePerDay = *input.WagePerDay
	}
	if input.WorkersNeeded != nil {
		if *input.WorkersNeeded < 1 {
			return Job{}, errors.New("at least one worker is required")
		}
		if *input.WorkersNeeded < j.HiredCount {
			return Job{}, fmt.Errorf("workers needed cannot drop below the %d already hired", j.HiredCount)
		}
		j.WorkersNeeded = *input.WorkersNeeded
	}
	if input.StartDate != nil {
		j.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		j.EndDate = *input.EndDate
	}
	if input.SkillsRequired != nil {
		j.SkillsRequired = append([]string(nil), input.SkillsRequired...)
	}
	j.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, j); err != nil {
		return Job{}, err
	}
	return j, nil
}

// Transition moves the job to a new status, enforcing ownership and the
// legal draft/active/completed/cancelled state machine.
func (s *Service) Transition(ctx context.Context, id, farmerID string, to Status) (Job, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if j.FarmerID != farmerID {
		return Job{}, ErrNotOwner
	}
	if !CanTransition(j.Status, to) {
		return Job{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, to)
	}

	j.Status = to
	j.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, j); err != nil {
		return Job{}, err
	}
	return j, nil
}
