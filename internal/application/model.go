package application

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no application exists for the key.
	ErrNotFound = errors.New("application not found")
	// ErrAlreadyApplied indicates the laborer already applied to the job.
	ErrAlreadyApplied = errors.New("already applied to this job")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = errors.New("invalid application status transition")
)

// Status is an application's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Application is a laborer's request to work a job.
type Application struct {
	ID              string
	JobID           string
	LaborerID       string
	Status          Status
	CoverNote       string
	NegotiatedWage  int64
	RejectionReason string
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// History records an engagement between a farmer and a worker, written when
// an application is accepted and closed out on completion.
type History struct {
	ID            string
	WorkerID      string
	FarmerID      string
	JobID         string
	StartDate     time.Time
	EndDate       *time.Time
	WagePerDay    int64
	TotalDays     int
	TotalEarnings int64
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
