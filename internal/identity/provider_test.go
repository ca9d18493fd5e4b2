package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farbour/farbour/internal/logging"
	"github.com/farbour/farbour/internal/sms"
)

func newTestProvider() *Provider {
	tokens := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	p := NewProvider(
		NewMemoryRepository(),
		NewMemoryChallengeStore(),
		sms.NewLoggerSender(logging.Discard()),
		tokens,
		logging.Discard(),
		Options{OTPMaxAttempts: 3},
	)
	p.generateCode = func(int) (string, error) { return "123456", nil }
	return p
}

func TestVerifyOTPCreatesIdentity(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	if err := p.SendOTP(ctx, "+911234567890", Metadata{Name: "Asha", UserType: "farmer"}); err != nil {
		t.Fatalf("send otp: %v", err)
	}

	session, user, err := p.VerifyOTP(ctx, "+911234567890", "123456")
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if user.Phone != "+911234567890" || user.Name != "Asha" {
		t.Fatalf("unexpected user %+v", user)
	}
	if !user.PhoneVerified {
		t.Fatal("expected phone verified")
	}

	// Same phone again resolves to the same identity.
	if err := p.SendOTP(ctx, "+911234567890", Metadata{Name: "other"}); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	_, again, err := p.VerifyOTP(ctx, "+911234567890", "123456")
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected stable identity, got %s and %s", user.ID, again.ID)
	}
	if again.Name != "Asha" {
		t.Fatalf("metadata must not rename an existing identity, got %q", again.Name)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	if err := p.SendOTP(ctx, "+911111111111", Metadata{}); err != nil {
		t.Fatalf("send otp: %v", err)
	}

	if _, _, err := p.VerifyOTP(ctx, "+911111111111", "000000"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}

	// Correct code still accepted within the attempt budget.
	if _, _, err := p.VerifyOTP(ctx, "+911111111111", "123456"); err != nil {
		t.Fatalf("verify otp after mismatch: %v", err)
	}
}

func TestVerifyOTPAttemptBudget(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	if err := p.SendOTP(ctx, "+912222222222", Metadata{}); err != nil {
		t.Fatalf("send otp: %v", err)
	}

	var err error
	for i := 0; i < 3; i++ {
		_, _, err = p.VerifyOTP(ctx, "+912222222222", "000000")
	}
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	// Challenge was consumed; even the right code is now expired.
	if _, _, err := p.VerifyOTP(ctx, "+912222222222", "123456"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
}

func TestVerifyOTPWithoutChallenge(t *testing.T) {
	p := newTestProvider()
	if _, _, err := p.VerifyOTP(context.Background(), "+913333333333", "123456"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
}

func TestRefreshSessionRotation(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	if err := p.SendOTP(ctx, "+914444444444", Metadata{}); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	session, user, err := p.VerifyOTP(ctx, "+914444444444", "123456")
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}

	rotated, err := p.RefreshSession(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.UserID != user.ID {
		t.Fatalf("expected session for %s, got %s", user.ID, rotated.UserID)
	}

	current, err := p.CurrentUser(ctx, rotated.AccessToken)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if current.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, current.ID)
	}
}

func TestSignOutRevokesTokens(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	if err := p.SendOTP(ctx, "+915555555555", Metadata{}); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	session, _, err := p.VerifyOTP(ctx, "+915555555555", "123456")
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}

	var events []EventKind
	unsubscribe := p.OnAuthStateChange(func(ev Event) { events = append(events, ev.Kind) })
	defer unsubscribe()

	if err := p.SignOut(ctx, session.AccessToken); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := p.CurrentUser(ctx, session.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after sign-out, got %v", err)
	}
	if _, err := p.RefreshSession(ctx, session.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected refresh rejection after sign-out, got %v", err)
	}

	// Second sign-out with a now-stale token is a no-op.
	if err := p.SignOut(ctx, session.AccessToken); err != nil {
		t.Fatalf("repeat sign out: %v", err)
	}

	if len(events) != 2 || events[0] != EventSignedOut || events[1] != EventSignedOut {
		t.Fatalf("unexpected events %v", events)
	}
}
