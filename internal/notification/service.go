package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service stores notifications and satisfies Notifier so domain services can
// emit directly into the user's inbox.
type Service struct {
	repo Repository
}

// NewService builds a notification service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Send persists the notification, assigning ID and timestamp.
func (s *Service) Send(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return s.repo.Create(ctx, n)
}

// ListByUser returns the user's notifications.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkRead flags the user's notification as read. Notifications belonging to
// another user are reported as not found.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}
