package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farbour/farbour/internal/earnings"
	"github.com/farbour/farbour/internal/job"
	"github.com/farbour/farbour/internal/logging"
	"github.com/farbour/farbour/internal/notification"
	"github.com/farbour/farbour/internal/profile"
)

type fixture struct {
	svc      *Service
	jobs     *job.Service
	profiles *profile.MemoryStore
	ledger   earnings.Ledger
	inbox    *notification.Service
	farmerID string
	worker   profile.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	jobRepo := job.NewMemoryRepository()
	profiles := profile.NewMemoryStore()
	ledger := earnings.NewInMemory()
	inbox := notification.NewService(notification.NewMemoryRepository())

	f := &fixture{
		jobs:     job.NewService(jobRepo),
		profiles: profiles,
		ledger:   ledger,
		inbox:    inbox,
		farmerID: uuid.NewString(),
		worker: profile.Profile{
			ID:       uuid.NewString(),
			Phone:    "+919876543210",
			Name:     "Sita",
			UserType: profile.UserTypeLaborer,
		},
	}
	if err := profiles.Insert(context.Background(), f.worker); err != nil {
		t.Fatalf("seed worker: %v", err)
	}
	f.svc = NewService(NewMemoryRepository(), jobRepo, profiles, ledger, inbox, logging.Discard())
	return f
}

func (f *fixture) postJob(t *testing.T, workers int) job.Job {
	t.Helper()
	start := time.Now().UTC().Add(24 * time.Hour)
	j, err := f.jobs.Create(context.Background(), job.CreateInput{
		FarmerID:      f.farmerID,
		Title:         "Harvest help",
		WagePerDay:    400,
		WorkersNeeded: workers,
		StartDate:     start,
		EndDate:       start.Add(2 * 24 * time.Hour),
		Publish:       true,
	})
	if err != nil {
		t.Fatalf("post job: %v", err)
	}
	return j
}

func TestApplyAndDuplicateGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 2)

	a, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID, CoverNote: "Available all week"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if a.Status != StatusPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}

	if _, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID}); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}

	updated, err := f.jobs.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if updated.ApplicationsCount != 1 {
		t.Fatalf("expected applications_count=1, got %d", updated.ApplicationsCount)
	}

	// Farmer got an inbox notification.
	msgs, err := f.inbox.ListByUser(ctx, f.farmerID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Kind != notification.KindApplicationReceived {
		t.Fatalf("expected application_received notification, got %v", msgs)
	}
}

func TestApplyToClosedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 1)

	if _, err := f.jobs.Transition(ctx, j.ID, f.farmerID, job.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID}); !errors.Is(err, job.ErrJobClosed) {
		t.Fatalf("expected ErrJobClosed, got %v", err)
	}
}

func TestAcceptHiresWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 1)

	a, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	accepted, err := f.svc.Accept(ctx, a.ID, f.farmerID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	updated, _ := f.jobs.Get(ctx, j.ID)
	if updated.HiredCount != 1 {
		t.Fatalf("expected hired_count=1, got %d", updated.HiredCount)
	}
	if updated.Open() {
		t.Fatal("fully-hired job must stop accepting applications")
	}

	history, err := f.svc.ListHistoryByWorker(ctx, f.worker.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Status != StatusAccepted || history[0].WagePerDay != 400 {
		t.Fatalf("unexpected history %v", history)
	}

	// Second applicant bounces off the filled job.
	other := uuid.NewString()
	if _, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: other}); !errors.Is(err, job.ErrJobClosed) {
		t.Fatalf("expected ErrJobClosed, got %v", err)
	}
}

func TestAcceptRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 1)

	a, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.svc.Accept(ctx, a.ID, uuid.NewString()); !errors.Is(err, job.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestRejectOnlyFromPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 1)

	a, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	rejected, err := f.svc.Reject(ctx, a.ID, f.farmerID, "dates do not fit")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.RejectionReason != "dates do not fit" {
		t.Fatalf("unexpected application %+v", rejected)
	}

	if _, err := f.svc.Accept(ctx, a.ID, f.farmerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCompleteRecordsEarnings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 1) // 3 inclusive days at 400/day

	a, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.svc.Accept(ctx, a.ID, f.farmerID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	completed, err := f.svc.Complete(ctx, a.ID, f.farmerID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != StatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected application %+v", completed)
	}

	total, err := f.ledger.Total(ctx, f.worker.ID)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 1200 {
		t.Fatalf("expected 1200 earned, got %d", total)
	}

	p, err := f.profiles.Get(ctx, f.worker.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.CompletedJobs != 1 {
		t.Fatalf("expected completed_jobs=1, got %d", p.CompletedJobs)
	}

	history, _ := f.svc.ListHistoryByWorker(ctx, f.worker.ID)
	if len(history) != 1 || history[0].Status != StatusCompleted || history[0].TotalEarnings != 1200 {
		t.Fatalf("unexpected history %v", history)
	}

	// Completing twice is rejected.
	if _, err := f.svc.Complete(ctx, a.ID, f.farmerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestWorkerRosterFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 3)

	second := profile.Profile{
		ID:       uuid.NewString(),
		Phone:    "+919812345678",
		Name:     "Ravi",
		UserType: profile.UserTypeLaborer,
		Status:   profile.WorkerWorking,
	}
	if err := f.profiles.Insert(ctx, second); err != nil {
		t.Fatalf("seed second worker: %v", err)
	}
	available := profile.WorkerAvailable
	if err := f.profiles.Update(ctx, f.worker.ID, profile.Update{Status: &available}); err != nil {
		t.Fatalf("update worker status: %v", err)
	}

	// Third applicant has history but no profile; the roster skips them.
	ghost := uuid.NewString()
	for _, laborerID := range []string{f.worker.ID, second.ID, ghost} {
		a, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: laborerID})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if _, err := f.svc.Accept(ctx, a.ID, f.farmerID); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}

	roster, err := f.svc.ListWorkers(ctx, f.farmerID, "")
	if err != nil {
		t.Fatalf("list workers: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(roster))
	}
	for _, w := range roster {
		if w.History.FarmerID != f.farmerID || w.Profile.ID != w.History.WorkerID {
			t.Fatalf("mismatched roster entry %+v", w)
		}
	}

	availableOnly, err := f.svc.ListWorkers(ctx, f.farmerID, profile.WorkerAvailable)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(availableOnly) != 1 || availableOnly[0].Profile.ID != f.worker.ID {
		t.Fatalf("expected only the available worker, got %v", availableOnly)
	}

	if others, _ := f.svc.ListWorkers(ctx, uuid.NewString(), ""); len(others) != 0 {
		t.Fatalf("another farmer sees no roster, got %v", others)
	}
}

func TestStatsForFarmer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.postJob(t, 2)

	a, err := f.svc.Apply(ctx, ApplyInput{JobID: j.ID, LaborerID: f.worker.ID})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.svc.Accept(ctx, a.ID, f.farmerID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	stats, err := f.svc.StatsForFarmer(ctx, f.farmerID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveJobs != 1 || stats.CompletedJobs != 0 || stats.TotalWorkers != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if _, err := f.svc.Complete(ctx, a.ID, f.farmerID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.jobs.Transition(ctx, j.ID, f.farmerID, job.StatusCompleted); err != nil {
		t.Fatalf("transition: %v", err)
	}

	stats, err = f.svc.StatsForFarmer(ctx, f.farmerID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveJobs != 0 || stats.CompletedJobs != 1 || stats.TotalWorkers != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	empty, err := f.svc.StatsForFarmer(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if empty != (FarmerStats{}) {
		t.Fatalf("expected zero stats, got %+v", empty)
	}
}
