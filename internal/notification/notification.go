package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrNotFound indicates no notification exists for the key.
var ErrNotFound = errors.New("notification not found")

// Notification types delivered to marketplace users.
const (
	KindApplicationReceived = "application_received"
	KindApplicationAccepted = "application_accepted"
	KindApplicationRejected = "application_rejected"
	KindJobCompleted        = "job_completed"
	KindPaymentRecorded     = "payment_received"
	KindReviewReceived      = "review_received"
)

// Notification is a message surfaced to a user in the app.
type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the notification to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, msg Notification) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", msg.Kind, "user_id", msg.UserID, "message", msg.Message)
	return nil
}
