package identity

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no identity exists for the given key.
	ErrNotFound = errors.New("identity not found")
	// ErrCodeExpired indicates no pending challenge exists for the phone.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeMismatch indicates the submitted code did not match.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrTooManyAttempts indicates the challenge was consumed by repeated failures.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrInvalidToken indicates a token failed verification or was revoked.
	ErrInvalidToken = errors.New("invalid token")
)

// User is a verified identity owned by the provider. The ID is immutable; the
// phone number is the natural key for existence checks.
type User struct {
	ID            string
	Phone         string
	Name          string
	PhoneVerified bool
	TokenVersion  int
	CreatedAt     time.Time
	LastSignIn    time.Time
}

// Session is the credential bundle issued on successful verification.
type Session struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Metadata travels with an OTP challenge and seeds the identity (and, server
// side, the profile) created on first verification of an unseen phone.
type Metadata struct {
	Name     string `json:"name"`
	UserType string `json:"user_type"`
}

// EventKind labels auth-state-change notifications.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventTokenRefreshed EventKind = "token_refreshed"
	EventSignedOut      EventKind = "signed_out"
)

// Event is delivered to auth-state-change subscribers. Session and User are
// nil for EventSignedOut.
type Event struct {
	Kind    EventKind
	Session *Session
	User    *User
}
