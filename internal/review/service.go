package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/farbour/farbour/internal/notification"
	"github.com/farbour/farbour/internal/profile"
)

// Service records reviews and keeps profile rating aggregates in sync.
type Service struct {
	repo     Repository
	profiles profile.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, profiles profile.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateInput captures a submitted review.
type CreateInput struct {
	ReviewerID string
	RevieweeID string
	JobID      string
	Rating     int
	Comment    string
}

// Create stores a review. One review per reviewer per job; the reviewee's
// profile aggregate is updated after the review is persisted.
func (s *Service) Create(ctx context.Context, input CreateInput) (Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return Review{}, ErrInvalidRating
	}
	if input.ReviewerID == input.RevieweeID {
		return Review{}, fmt.Errorf("cannot review yourself")
	}
	if _, err := s.profiles.Get(ctx, input.RevieweeID); err != nil {
		return Review{}, fmt.Errorf("load reviewee: %w", err)
	}

	_, err := s.repo.FindByReviewerAndJob(ctx, input.ReviewerID, input.JobID)
	if err == nil {
		return Review{}, ErrAlreadyReviewed
	}
	if !errors.Is(err, ErrNotFound) {
		return Review{}, fmt.Errorf("check existing review: %w", err)
	}

	rev := Review{
		ID:         uuid.NewString(),
		ReviewerID: input.ReviewerID,
		RevieweeID: input.RevieweeID,
		JobID:      input.JobID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &rev); err != nil {
		return Review{}, fmt.Errorf("create review: %w", err)
	}

	if err := s.profiles.AddRating(ctx, input.RevieweeID, input.Rating); err != nil {
		s.logger.Warn("update rating aggregate", "reviewee_id", input.RevieweeID, "error", err)
	}
	s.notify(ctx, input.RevieweeID, rev.Rating)

	return rev, nil
}

// ListForUser returns reviews received by a user, newest first.
func (s *Service) ListForUser(ctx context.Context, revieweeID string) ([]*Review, error) {
	return s.repo.ListForUser(ctx, revieweeID)
}

func (s *Service) notify(ctx context.Context, userID string, rating int) {
	err := s.notifier.Send(ctx, notification.Notification{
		UserID:  userID,
		Kind:    notification.KindReviewReceived,
		Title:   "New review",
		Message: fmt.Sprintf("You received a %d-star review", rating),
	})
	if err != nil {
		s.logger.Warn("send notification", "user_id", userID, "error", err)
	}
}
