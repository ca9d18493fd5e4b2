package profile

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreVisibilityLag(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.SeedLagged(Profile{ID: "u1", Phone: "+242061234567", Name: "Rosalie"}, 2)

	for i := 0; i < 2; i++ {
		if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("read %d: err = %v, want ErrNotFound while lagged", i, err)
		}
	}
	p, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("read after lag consumed: %v", err)
	}
	if p.Name != "Rosalie" {
		t.Fatalf("profile name = %q, want Rosalie", p.Name)
	}
}

func TestMemoryStoreExistsByPhoneConsumesLag(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.SeedLagged(Profile{ID: "u1", Phone: "+242061234567"}, 1)

	ok, _, err := store.ExistsByPhone(ctx, "+242061234567")
	if err != nil || ok {
		t.Fatalf("lagged existence check = (%v, %v), want invisible", ok, err)
	}
	ok, p, err := store.ExistsByPhone(ctx, "+242061234567")
	if err != nil || !ok || p == nil {
		t.Fatalf("second existence check = (%v, %v, %v), want visible", ok, p, err)
	}
	if p.ID != "u1" {
		t.Fatalf("profile id = %q, want u1", p.ID)
	}
}

func TestMemoryStoreUpdateMergesPartialFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Insert(ctx, Profile{
		ID:       "u1",
		Name:     "Rosalie",
		Phone:    "+242061234567",
		UserType: UserTypeLaborer,
		Bio:      "seasonal picker",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	bio := "cassava and groundnut harvests"
	skills := []string{"harvest", "planting"}
	if err := store.Update(ctx, "u1", Update{Bio: &bio, Skills: skills}); err != nil {
		t.Fatalf("update: %v", err)
	}

	p, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Bio != bio {
		t.Fatalf("bio = %q, want %q", p.Bio, bio)
	}
	if len(p.Skills) != 2 {
		t.Fatalf("skills = %v, want 2 entries", p.Skills)
	}
	if p.Name != "Rosalie" || p.UserType != UserTypeLaborer {
		t.Fatalf("untouched fields changed: %+v", p)
	}
	if p.UpdatedAt.IsZero() || p.UpdatedAt.After(time.Now().Add(time.Minute)) {
		t.Fatalf("updated_at not stamped: %v", p.UpdatedAt)
	}
}

func TestMemoryStoreInsertRejectsDuplicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Insert(ctx, Profile{ID: "u1"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, Profile{ID: "u1"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate insert err = %v, want ErrAlreadyExists", err)
	}
}
