package job

import (
	"errors"
	"time"

	"github.com/farbour/farbour/internal/profile"
)

var (
	// ErrNotFound indicates no job exists for the key.
	ErrNotFound = errors.New("job not found")
	// ErrNotOwner indicates the caller does not own the job.
	ErrNotOwner = errors.New("job belongs to another farmer")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = errors.New("invalid job status transition")
	// ErrJobClosed indicates the job no longer accepts applications.
	ErrJobClosed = errors.New("job is not accepting applications")
)

// Status is a job posting's lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusCancelled},
	StatusActive: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from may legally move to to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Job is an agricultural work posting by a farmer.
type Job struct {
	ID                string
	FarmerID          string
	Title             string
	Description       string
	Category          string
	Location          profile.Location
	WagePerDay        int64
	WorkersNeeded     int
	StartDate         time.Time
	EndDate           time.Time
	SkillsRequired    []string
	Status            Status
	ApplicationsCount int
	HiredCount        int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Open reports whether the job still accepts applications.
func (j Job) Open() bool {
	return j.Status == StatusActive && j.HiredCount < j.WorkersNeeded
}
