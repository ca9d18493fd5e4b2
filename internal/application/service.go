package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/farbour/farbour/internal/earnings"
	"github.com/farbour/farbour/internal/job"
	"github.com/farbour/farbour/internal/notification"
	"github.com/farbour/farbour/internal/profile"
)

// Service manages application lifecycle: apply, accept, reject, complete.
type Service struct {
	repo     Repository
	jobs     job.Repository
	profiles profile.Store
	ledger   earnings.Ledger
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds an application service.
func NewService(repo Repository, jobs job.Repository, profiles profile.Store, ledger earnings.Ledger, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		jobs:     jobs,
		profiles: profiles,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
	}
}

// ApplyInput captures an application submission.
type ApplyInput struct {
	JobID          string
	LaborerID      string
	CoverNote      string
	NegotiatedWage int64
}

// Apply submits an application to an open job. One application per laborer
// per job.
func (s *Service) Apply(ctx context.Context, input ApplyInput) (Application, error) {
	j, err := s.jobs.Get(ctx, input.JobID)
	if err != nil {
		return Application{}, err
	}
	if !j.Open() {
		return Application{}, job.ErrJobClosed
	}

	if _, err := s.repo.FindByJobAndLaborer(ctx, input.JobID, input.LaborerID); err == nil {
		return Application{}, ErrAlreadyApplied
	} else if !errors.Is(err, ErrNotFound) {
		return Application{}, err
	}

	now := time.Now().UTC()
	a := Application{
		ID:             uuid.NewString(),
		JobID:          input.JobID,
		LaborerID:      input.LaborerID,
		Status:         StatusPending,
		CoverNote:      input.CoverNote,
		NegotiatedWage: input.NegotiatedWage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Application{}, err
	}
	if err := s.jobs.IncrementApplications(ctx, j.ID); err != nil {
		s.logger.Warn("increment applications", "job_id", j.ID, "error", err)
	}

	s.notify(ctx, j.FarmerID, notification.KindApplicationReceived, "New application",
		fmt.Sprintf("A laborer applied to %q", j.Title))
	return a, nil
}

// Get retrieves an application.
func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	return s.repo.Get(ctx, id)
}

// ListByJob returns applications for a job. Only the owning farmer may list.
func (s *Service) ListByJob(ctx context.Context, jobID, farmerID string) ([]Application, error) {
	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.FarmerID != farmerID {
		return nil, job.ErrNotOwner
	}
	return s.repo.ListByJob(ctx, jobID)
}

// ListByLaborer returns the laborer's applications.
func (s *Service) ListByLaborer(ctx context.Context, laborerID string) ([]Application, error) {
	return s.repo.ListByLaborer(ctx, laborerID)
}

// ListHistoryByWorker returns the worker's engagement history.
func (s *Service) ListHistoryByWorker(ctx context.Context, workerID string) ([]History, error) {
	return s.repo.ListHistoryByWorker(ctx, workerID)
}

// Worker pairs a farmer's engagement record with the worker's profile.
type Worker struct {
	History History
	Profile profile.Profile
}

// ListWorkers returns the farmer's worker roster, newest engagement first.
// A non-empty status narrows the roster to workers in that availability
// state. Engagements whose worker profile is missing are skipped.
func (s *Service) ListWorkers(ctx context.Context, farmerID string, status profile.WorkerStatus) ([]Worker, error) {
	entries, err := s.repo.ListHistoryByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	out := make([]Worker, 0, len(entries))
	for _, h := range entries {
		p, err := s.profiles.Get(ctx, h.WorkerID)
		if errors.Is(err, profile.ErrNotFound) {
			s.logger.Warn("worker profile missing", "worker_id", h.WorkerID, "history_id", h.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, Worker{History: h, Profile: p})
	}
	return out, nil
}

// FarmerStats summarizes a farmer's dashboard numbers.
type FarmerStats struct {
	ActiveJobs    int
	CompletedJobs int
	TotalWorkers  int
}

// StatsForFarmer counts the farmer's active and completed jobs along with the
// distinct workers they have ever engaged.
func (s *Service) StatsForFarmer(ctx context.Context, farmerID string) (FarmerStats, error) {
	var stats FarmerStats

	jobs, err := s.jobs.ListByFarmer(ctx, farmerID, "")
	if err != nil {
		return FarmerStats{}, err
	}
	for _, j := range jobs {
		switch j.Status {
		case job.StatusActive:
			stats.ActiveJobs++
		case job.StatusCompleted:
			stats.CompletedJobs++
		}
	}

	entries, err := s.repo.ListHistoryByFarmer(ctx, farmerID)
	if err != nil {
		return FarmerStats{}, err
	}
	seen := make(map[string]struct{}, len(entries))
	for _, h := range entries {
		seen[h.WorkerID] = struct{}{}
	}
	stats.TotalWorkers = len(seen)
	return stats, nil
}

// Accept hires the applicant: pending -> accepted, increments the job's
// hired count, and opens a worker-history engagement.
func (s *Service) Accept(ctx context.Context, id, farmerID string) (Application, error) {
	a, j, err := s.load(ctx, id, farmerID)
	if err != nil {
		return Application{}, err
	}
	if a.Status != StatusPending {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusAccepted)
	}
	if !j.Open() {
		return Application{}, job.ErrJobClosed
	}

	now := time.Now().UTC()
	a.Status = StatusAccepted
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, err
	}
	if err := s.jobs.IncrementHired(ctx, j.ID); err != nil {
		s.logger.Warn("increment hired", "job_id", j.ID, "error", err)
	}

	wage := a.NegotiatedWage
	if wage <= 0 {
		wage = j.WagePerDay
	}
	h := History{
		ID:         uuid.NewString(),
		WorkerID:   a.LaborerID,
		FarmerID:   j.FarmerID,
		JobID:      j.ID,
		StartDate:  j.StartDate,
		WagePerDay: wage,
		Status:     StatusAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateHistory(ctx, h); err != nil {
		s.logger.Warn("create worker history", "application_id", a.ID, "error", err)
	}

	s.notify(ctx, a.LaborerID, notification.KindApplicationAccepted, "Application accepted",
		fmt.Sprintf("You were hired for %q", j.Title))
	return a, nil
}

// Reject declines the applicant: pending -> rejected, with an optional reason.
func (s *Service) Reject(ctx context.Context, id, farmerID, reason string) (Application, error) {
	a, j, err := s.load(ctx, id, farmerID)
	if err != nil {
		return Application{}, err
	}
	if a.Status != StatusPending {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusRejected)
	}

	a.Status = StatusRejected
	a.RejectionReason = reason
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, err
	}

	s.notify(ctx, a.LaborerID, notification.KindApplicationRejected, "Application update",
		fmt.Sprintf("Your application to %q was not selected", j.Title))
	return a, nil
}

// Complete closes out an accepted engagement: stamps the completion date,
// records the worker's earnings, and bumps their completed-jobs counter.
// Earnings and profile bookkeeping are best-effort; the status change is
// authoritative.
func (s *Service) Complete(ctx context.Context, id, farmerID string) (Application, error) {
	a, j, err := s.load(ctx, id, farmerID)
	if err != nil {
		return Application{}, err
	}
	if a.Status != StatusAccepted {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusCompleted)
	}

	now := time.Now().UTC()
	a.Status = StatusCompleted
	a.CompletedAt = &now
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, err
	}

	days := workedDays(j.StartDate, j.EndDate)
	wage := a.NegotiatedWage
	if wage <= 0 {
		wage = j.WagePerDay
	}
	total := wage * int64(days)

	if err := s.ledger.Record(ctx, earnings.Entry{
		ID:       uuid.NewString(),
		WorkerID: a.LaborerID,
		JobID:    j.ID,
		Amount:   total,
		EarnedAt: now,
	}); err != nil {
		s.logger.Warn("record earnings", "application_id", a.ID, "error", err)
	}
	if err := s.profiles.MarkJobCompleted(ctx, a.LaborerID); err != nil {
		s.logger.Warn("mark job completed", "laborer_id", a.LaborerID, "error", err)
	}

	if h, err := s.repo.FindHistoryByJobAndWorker(ctx, j.ID, a.LaborerID); err == nil {
		h.EndDate = &now
		h.TotalDays = days
		h.TotalEarnings = total
		h.Status = StatusCompleted
		h.UpdatedAt = now
		if err := s.repo.UpdateHistory(ctx, h); err != nil {
			s.logger.Warn("close worker history", "application_id", a.ID, "error", err)
		}
	}

	s.notify(ctx, a.LaborerID, notification.KindJobCompleted, "Job completed",
		fmt.Sprintf("Work on %q is complete, %d earned", j.Title, total))
	return a, nil
}

func (s *Service) load(ctx context.Context, id, farmerID string) (Application, job.Job, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Application{}, job.Job{}, err
	}
	j, err := s.jobs.Get(ctx, a.JobID)
	if err != nil {
		return Application{}, job.Job{}, err
	}
	if j.FarmerID != farmerID {
		return Application{}, job.Job{}, job.ErrNotOwner
	}
	return a, j, nil
}

func (s *Service) notify(ctx context.Context, userID, kind, title, message string) {
	err := s.notifier.Send(ctx, notification.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.Warn("send notification", "user_id", userID, "kind", kind, "error", err)
	}
}

// workedDays counts inclusive calendar days between the job's start and end.
func workedDays(start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}
