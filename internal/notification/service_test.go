package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMarkReadScopedToOwner(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	owner := uuid.NewString()
	intruder := uuid.NewString()
	n := Notification{ID: uuid.NewString(), UserID: owner, Kind: KindJobCompleted, Title: "Job completed"}
	if err := svc.Send(ctx, n); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.MarkRead(ctx, n.ID, intruder); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}
	items, err := svc.ListByUser(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].IsRead {
		t.Fatalf("notification should be untouched, got %+v", items)
	}

	if err := svc.MarkRead(ctx, n.ID, owner); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	items, _ = svc.ListByUser(ctx, owner)
	if !items[0].IsRead {
		t.Fatal("notification should be read")
	}
}

func TestMarkReadUnknownID(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	err := svc.MarkRead(context.Background(), uuid.NewString(), uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	userID := uuid.NewString()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := svc.Send(ctx, Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      KindApplicationReceived,
			Title:     "New application",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	items, err := svc.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Fatalf("notifications out of order: %v before %v", items[i-1].CreatedAt, items[i].CreatedAt)
		}
	}
}
