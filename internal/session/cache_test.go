package session

import (
	"testing"
	"time"

	"github.com/farbour/farbour/internal/identity"
)

func TestFileCacheSessionRoundTrip(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("new file cache: %v", err)
	}

	if _, ok, err := cache.LoadSession(); err != nil || ok {
		t.Fatalf("empty cache load = (%v, %v), want absent without error", ok, err)
	}

	sess := identity.Session{
		UserID:       "user-1",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	if err := cache.SaveSession(sess); err != nil {
		t.Fatalf("save session: %v", err)
	}

	loaded, ok, err := cache.LoadSession()
	if err != nil || !ok {
		t.Fatalf("load session = (%v, %v), want present", ok, err)
	}
	if loaded != sess {
		t.Fatalf("loaded session = %+v, want %+v", loaded, sess)
	}

	if err := cache.ClearSession(); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	if _, ok, _ := cache.LoadSession(); ok {
		t.Fatal("session still present after clear")
	}
	// Clearing twice must stay silent.
	if err := cache.ClearSession(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestFileCacheRememberedUserRoundTrip(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("new file cache: %v", err)
	}

	want := RememberedUser{Name: "Clarisse", Phone: "+242069998877"}
	if err := cache.SaveRememberedUser(want); err != nil {
		t.Fatalf("save remembered user: %v", err)
	}

	got, ok, err := cache.LoadRememberedUser()
	if err != nil || !ok {
		t.Fatalf("load remembered user = (%v, %v), want present", ok, err)
	}
	if got != want {
		t.Fatalf("remembered user = %+v, want %+v", got, want)
	}
}
