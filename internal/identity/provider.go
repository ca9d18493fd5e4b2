package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/farbour/farbour/internal/sms"
)

// Options tunes the provider's OTP behavior.
type Options struct {
	OTPTTL         time.Duration
	OTPLength      int
	OTPMaxAttempts int
}

// Provider implements phone-OTP authentication: challenge issuance,
// verification with identity creation on first sign-in, token refresh, and
// auth-state-change notifications.
type Provider struct {
	repo       Repository
	challenges ChallengeStore
	sender     sms.Sender
	tokens     *TokenIssuer
	logger     *slog.Logger
	opts       Options

	mu      sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	// generateCode is swapped in tests for a deterministic code.
	generateCode func(length int) (string, error)
}

// NewProvider assembles an identity provider.
func NewProvider(repo Repository, challenges ChallengeStore, sender sms.Sender, tokens *TokenIssuer, logger *slog.Logger, opts Options) *Provider {
	if opts.OTPLength <= 0 {
		opts.OTPLength = 6
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	if opts.OTPMaxAttempts <= 0 {
		opts.OTPMaxAttempts = 5
	}
	return &Provider{
		repo:         repo,
		challenges:   challenges,
		sender:       sender,
		tokens:       tokens,
		logger:       logger,
		opts:         opts,
		subs:         make(map[int]func(Event)),
		generateCode: randomCode,
	}
}

// SendOTP issues a challenge to the phone and delivers the code via SMS. The
// metadata is held with the challenge and applied if a new identity must be
// created at verification time.
func (p *Provider) SendOTP(ctx context.Context, phone string, meta Metadata) error {
	code, err := p.generateCode(p.opts.OTPLength)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	if err := p.challenges.Put(ctx, phone, Challenge{CodeHash: hash, Meta: meta}, p.opts.OTPTTL); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}

	body := fmt.Sprintf("Your Farbour verification code is %s", code)
	if err := p.sender.Send(ctx, phone, body); err != nil {
		return fmt.Errorf("deliver code: %w", err)
	}

	p.logger.Info("otp issued", "phone", phone)
	return nil
}

// VerifyOTP checks the submitted code, creating the identity on first
// verification of an unseen phone, and issues a session on success.
func (p *Provider) VerifyOTP(ctx context.Context, phone, code string) (Session, User, error) {
	ch, err := p.challenges.Get(ctx, phone)
	if err != nil {
		return Session{}, User{}, err
	}

	if bcrypt.CompareHashAndPassword(ch.CodeHash, []byte(code)) != nil {
		ch.Attempts++
		if ch.Attempts >= p.opts.OTPMaxAttempts {
			_ = p.challenges.Delete(ctx, phone)
			return Session{}, User{}, ErrTooManyAttempts
		}
		if err := p.challenges.Update(ctx, phone, ch); err != nil {
			p.logger.Warn("record failed attempt", "phone", phone, "error", err)
		}
		return Session{}, User{}, ErrCodeMismatch
	}

	if err := p.challenges.Delete(ctx, phone); err != nil {
		p.logger.Warn("consume challenge", "phone", phone, "error", err)
	}

	now := time.Now().UTC()
	user, err := p.repo.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if err := p.repo.RecordSignIn(ctx, user.ID, now); err != nil {
			return Session{}, User{}, err
		}
		user.PhoneVerified = true
		user.LastSignIn = now
	case err == ErrNotFound:
		user = User{
			ID:            uuid.NewString(),
			Phone:         phone,
			Name:          ch.Meta.Name,
			PhoneVerified: true,
			CreatedAt:     now,
			LastSignIn:    now,
		}
		if err := p.repo.Create(ctx, user); err != nil {
			return Session{}, User{}, err
		}
	default:
		return Session{}, User{}, err
	}

	session, err := p.tokens.IssuePair(user)
	if err != nil {
		return Session{}, User{}, err
	}

	p.notify(Event{Kind: EventSignedIn, Session: &session, User: &user})
	return session, user, nil
}

// RefreshSession rotates the token pair if the refresh token is still valid
// for the user's current token version.
func (p *Provider) RefreshSession(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := p.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return Session{}, err
	}

	user, err := p.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	if user.TokenVersion != claims.Ver {
		return Session{}, ErrInvalidToken
	}

	session, err := p.tokens.IssuePair(user)
	if err != nil {
		return Session{}, err
	}

	p.notify(Event{Kind: EventTokenRefreshed, Session: &session, User: &user})
	return session, nil
}

// CurrentUser resolves the identity behind an access token.
func (p *Provider) CurrentUser(ctx context.Context, accessToken string) (User, error) {
	claims, err := p.tokens.ParseAccess(accessToken)
	if err != nil {
		return User{}, err
	}
	user, err := p.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		return User{}, ErrInvalidToken
	}
	if user.TokenVersion != claims.Ver {
		return User{}, ErrInvalidToken
	}
	return user, nil
}

// SignOut revokes the user's outstanding tokens by bumping the token version.
// An unparseable token is treated as already signed out.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.tokens.ParseAccess(accessToken)
	if err != nil {
		p.notify(Event{Kind: EventSignedOut})
		return nil
	}

	user, err := p.repo.FindByID(ctx, claims.Subject)
	if err == nil {
		if err := p.repo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1); err != nil {
			return err
		}
	}

	p.notify(Event{Kind: EventSignedOut})
	return nil
}

// OAuthURL builds the redirect URL that starts an OAuth sign-in.
func (p *Provider) OAuthURL(providerName, redirect string) (string, error) {
	if providerName != "google" {
		return "", fmt.Errorf("unsupported oauth provider %q", providerName)
	}
	q := url.Values{}
	q.Set("redirect_to", redirect)
	return "https://accounts.google.com/o/oauth2/v2/auth?" + q.Encode(), nil
}

// OnAuthStateChange registers a callback for session lifecycle events and
// returns an unsubscribe function.
func (p *Provider) OnAuthStateChange(fn func(Event)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) notify(ev Event) {
	p.mu.Lock()
	subs := make([]func(Event), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func randomCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
