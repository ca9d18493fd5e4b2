package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farbour/farbour/internal/logging"
	"github.com/farbour/farbour/internal/notification"
	"github.com/farbour/farbour/internal/profile"
)

func newTestService(t *testing.T) (*Service, *profile.MemoryStore) {
	t.Helper()
	profiles := profile.NewMemoryStore()
	worker := profile.Profile{
		ID:        "worker-1",
		Name:      "Dieudonne",
		Phone:     "+242061112233",
		UserType:  profile.UserTypeLaborer,
		CreatedAt: time.Now().UTC(),
	}
	if err := profiles.Insert(context.Background(), worker); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	notifier := notification.NewService(notification.NewMemoryRepository())
	svc := NewService(NewMemoryRepository(), profiles, notifier, logging.Discard())
	return svc, profiles
}

func TestCreateUpdatesRatingAggregate(t *testing.T) {
	svc, profiles := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		ReviewerID: "farmer-1",
		RevieweeID: "worker-1",
		JobID:      "job-1",
		Rating:     4,
		Comment:    "reliable",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	_, err = svc.Create(ctx, CreateInput{
		ReviewerID: "farmer-2",
		RevieweeID: "worker-1",
		JobID:      "job-2",
		Rating:     5,
	})
	if err != nil {
		t.Fatalf("create second review: %v", err)
	}

	p, err := profiles.Get(ctx, "worker-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.TotalRatings != 2 {
		t.Fatalf("total ratings = %d, want 2", p.TotalRatings)
	}
	if p.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", p.Rating)
	}
}

func TestCreateRejectsDuplicatePerJob(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	input := CreateInput{
		ReviewerID: "farmer-1",
		RevieweeID: "worker-1",
		JobID:      "job-1",
		Rating:     3,
	}
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := svc.Create(ctx, input); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("duplicate review error = %v, want ErrAlreadyReviewed", err)
	}
}

func TestCreateValidatesRating(t *testing.T) {
	svc, profiles := newTestService(t)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(ctx, CreateInput{
			ReviewerID: "farmer-1",
			RevieweeID: "worker-1",
			JobID:      "job-1",
			Rating:     rating,
		})
		if !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d error = %v, want ErrInvalidRating", rating, err)
		}
	}

	p, _ := profiles.Get(ctx, "worker-1")
	if p.TotalRatings != 0 {
		t.Fatalf("aggregate touched by invalid reviews: %d", p.TotalRatings)
	}
}

func TestCreateRejectsSelfReview(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		ReviewerID: "worker-1",
		RevieweeID: "worker-1",
		JobID:      "job-1",
		Rating:     5,
	})
	if err == nil {
		t.Fatal("expected self-review to be rejected")
	}
}

func TestCreateRequiresExistingReviewee(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		ReviewerID: "farmer-1",
		RevieweeID: "ghost",
		JobID:      "job-1",
		Rating:     4,
	})
	if !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("error = %v, want profile.ErrNotFound", err)
	}
}

func TestListForUserNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, jobID := range []string{"job-1", "job-2"} {
		_, err := svc.Create(ctx, CreateInput{
			ReviewerID: "farmer-1",
			RevieweeID: "worker-1",
			JobID:      jobID,
			Rating:     i + 3,
		})
		if err != nil {
			t.Fatalf("create review %d: %v", i, err)
		}
	}

	reviews, err := svc.ListForUser(ctx, "worker-1")
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("got %d reviews, want 2", len(reviews))
	}
	if reviews[0].JobID != "job-2" {
		t.Fatalf("first review job = %s, want job-2 (newest first)", reviews[0].JobID)
	}
}
