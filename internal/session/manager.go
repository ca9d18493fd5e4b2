package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/farbour/farbour/internal/identity"
	"github.com/farbour/farbour/internal/profile"
	"github.com/farbour/farbour/internal/retry"
)

// ErrNotAuthenticated is returned by operations that require a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// IdentityAPI is the slice of the identity provider the manager consumes.
type IdentityAPI interface {
	SendOTP(ctx context.Context, phone string, meta identity.Metadata) error
	VerifyOTP(ctx context.Context, phone, code string) (identity.Session, identity.User, error)
	CurrentUser(ctx context.Context, accessToken string) (identity.User, error)
	RefreshSession(ctx context.Context, refreshToken string) (identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	OnAuthStateChange(fn func(identity.Event)) func()
}

// Options tunes the manager's profile reconciliation behavior. The settle
// delay and retry budget absorb the lag between identity creation and the
// profile row becoming visible.
type Options struct {
	SettleDelay     time.Duration
	RetryCount      int
	RetryBackoff    time.Duration
	DefaultUserType profile.UserType
	Clock           retry.Clock
}

// State is a point-in-time snapshot of the manager. Nil fields mean absent;
// Profile may legitimately be absent while User is present during the
// provisioning race.
type State struct {
	Session *identity.Session
	User    *identity.User
	Profile *profile.Profile
	Loading bool
}

// SignInResult reports the outcome of an OTP request. IsNewUser reflects the
// profile existence check performed before the OTP was issued and can be
// stale by the time verification completes.
type SignInResult struct {
	IsNewUser bool
}

// Manager owns the process-wide authentication state: the current session,
// identity, and profile. It orchestrates the phone-OTP flow and reconciles
// the eventually-consistent profile provisioning that follows verification.
// All operations are safe for concurrent use; UI readers consume snapshots
// and never mutate state directly.
type Manager struct {
	provider IdentityAPI
	profiles profile.Store
	cache    CredentialCache
	logger   *slog.Logger
	opts     Options

	mu          sync.RWMutex
	session     *identity.Session
	user        *identity.User
	profile     *profile.Profile
	loading     bool
	unsubscribe func()
}

// NewManager assembles a session manager. Call Start to run the launch-time
// restoration protocol and Close to tear down the subscription.
func NewManager(provider IdentityAPI, profiles profile.Store, cache CredentialCache, logger *slog.Logger, opts Options) *Manager {
	if opts.RetryCount <= 0 {
		opts.RetryCount = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	if opts.DefaultUserType == "" {
		opts.DefaultUserType = profile.DefaultUserType
	}
	if opts.Clock == nil {
		opts.Clock = retry.RealClock{}
	}
	return &Manager{
		provider: provider,
		profiles: profiles,
		cache:    cache,
		logger:   logger,
		opts:     opts,
		loading:  true,
	}
}

// Start restores a persisted session, fetches the profile for it, and
// subscribes to the provider's auth-state changes. Loading is cleared once
// the restoration attempt completes, whatever its outcome.
func (m *Manager) Start(ctx context.Context) error {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	m.unsubscribe = m.provider.OnAuthStateChange(m.handleEvent)

	sess, ok, err := m.cache.LoadSession()
	if err != nil {
		m.logger.Warn("load persisted session", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	user, err := m.provider.CurrentUser(ctx, sess.AccessToken)
	if err != nil {
		// Access token may have expired between launches; try the refresh
		// token before giving up on the persisted session.
		refreshed, rerr := m.provider.RefreshSession(ctx, sess.RefreshToken)
		if rerr != nil {
			m.logger.Info("persisted session no longer valid", "error", err)
			if cerr := m.cache.ClearSession(); cerr != nil {
				m.logger.Warn("clear stale session", "error", cerr)
			}
			return nil
		}
		sess = refreshed
		user, err = m.provider.CurrentUser(ctx, sess.AccessToken)
		if err != nil {
			m.logger.Warn("restore session", "error", err)
			return nil
		}
	}

	m.adopt(sess, user)
	m.persist(sess)
	m.fetchProfileOnce(ctx, user.ID)
	return nil
}

// Close unsubscribes from auth-state changes.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := State{Loading: m.loading}
	if m.session != nil {
		sess := *m.session
		st.Session = &sess
	}
	if m.user != nil {
		user := *m.user
		st.User = &user
	}
	if m.profile != nil {
		p := *m.profile
		st.Profile = &p
	}
	return st
}

// SignIn checks whether a profile already exists for the phone, then requests
// an OTP challenge carrying the display name and default user type as
// metadata. Phone format validation is the caller's responsibility. No state
// changes on failure.
func (m *Manager) SignIn(ctx context.Context, phone, name string) (SignInResult, error) {
	exists, _, err := m.profiles.ExistsByPhone(ctx, phone)
	if err != nil {
		return SignInResult{}, fmt.Errorf("check profile existence: %w", err)
	}

	meta := identity.Metadata{Name: name, UserType: string(m.opts.DefaultUserType)}
	if err := m.provider.SendOTP(ctx, phone, meta); err != nil {
		return SignInResult{}, err
	}

	return SignInResult{IsNewUser: !exists}, nil
}

// VerifyOTP submits the code for verification. On success the session and
// user are adopted, then the manager waits the settle delay and runs the
// profile fetch-with-retry procedure; if no profile row turns up it inserts a
// minimal fallback record. Verification failure is returned with state
// untouched. Profile reconciliation failures are logged, not returned:
// identity verification success is authoritative and profile completeness is
// best-effort.
func (m *Manager) VerifyOTP(ctx context.Context, phone, code string) error {
	sess, user, err := m.provider.VerifyOTP(ctx, phone, code)
	if err != nil {
		return err
	}

	m.adopt(sess, user)
	m.persist(sess)

	if m.opts.SettleDelay > 0 {
		if err := m.opts.Clock.Sleep(ctx, m.opts.SettleDelay); err != nil {
			return nil
		}
	}

	if m.fetchProfileWithRetry(ctx, user.ID) {
		return nil
	}

	// No row became visible within the retry budget. Re-check by phone before
	// inserting: a concurrent sign-in for the same number may have provisioned
	// the profile already, and a duplicate insert would fail or fork state.
	exists, data, err := m.profiles.ExistsByPhone(ctx, phone)
	if err != nil {
		m.logger.Warn("profile existence re-check", "user_id", user.ID, "error", err)
		return nil
	}
	if exists {
		m.setProfile(data)
		return nil
	}

	now := time.Now().UTC()
	fallback := profile.Profile{
		ID:              user.ID,
		Phone:           phone,
		UserType:        m.opts.DefaultUserType,
		IsPhoneVerified: true,
		Status:          profile.WorkerAvailable,
		LastActive:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := m.profiles.Insert(ctx, fallback); err != nil {
		m.logger.Warn("insert fallback profile", "user_id", user.ID, "error", err)
		return nil
	}
	m.logger.Info("fallback profile provisioned", "user_id", user.ID)
	m.fetchProfileOnce(ctx, user.ID)
	return nil
}

// SignOut revokes the session and clears local state. Calling it while
// already signed out is a no-op.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.RLock()
	var accessToken string
	if m.session != nil {
		accessToken = m.session.AccessToken
	}
	m.mu.RUnlock()

	if accessToken != "" {
		if err := m.provider.SignOut(ctx, accessToken); err != nil {
			return err
		}
	}

	m.clear()
	if err := m.cache.ClearSession(); err != nil {
		m.logger.Warn("clear persisted session", "error", err)
	}
	return nil
}

// UpdateProfile writes partial fields to the profile store and merges them
// into local state only when the write succeeds. Requires a signed-in user;
// otherwise no store call is made.
func (m *Manager) UpdateProfile(ctx context.Context, updates profile.Update) error {
	m.mu.RLock()
	user := m.user
	m.mu.RUnlock()
	if user == nil {
		return ErrNotAuthenticated
	}

	if err := m.profiles.Update(ctx, user.ID, updates); err != nil {
		return err
	}

	m.mu.Lock()
	if m.profile != nil {
		updates.Apply(m.profile, time.Now().UTC())
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	// No local copy to merge into; fetch the written row instead.
	m.fetchProfileOnce(ctx, user.ID)
	return nil
}

// ConsumeAuthCallback establishes a session from an OAuth redirect deep link
// of the form farbour://auth#access_token=...&refresh_token=....
func (m *Manager) ConsumeAuthCallback(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse callback url: %w", err)
	}
	frag, err := url.ParseQuery(parsed.Fragment)
	if err != nil {
		return fmt.Errorf("parse callback fragment: %w", err)
	}
	refreshToken := frag.Get("refresh_token")
	if frag.Get("access_token") == "" || refreshToken == "" {
		return errors.New("callback missing token pair")
	}

	// Exchange the callback pair for a freshly-rotated session; this also
	// validates the tokens in one step.
	sess, err := m.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	user, err := m.provider.CurrentUser(ctx, sess.AccessToken)
	if err != nil {
		return err
	}

	m.adopt(sess, user)
	m.persist(sess)
	m.fetchProfileOnce(ctx, user.ID)
	return nil
}

// RememberUser caches the sign-in form values for the next launch.
func (m *Manager) RememberUser(u RememberedUser) error {
	return m.cache.SaveRememberedUser(u)
}

// RememberedUser returns the cached sign-in form values, if any.
func (m *Manager) RememberedUser() (RememberedUser, bool) {
	u, ok, err := m.cache.LoadRememberedUser()
	if err != nil {
		m.logger.Warn("load remembered user", "error", err)
		return RememberedUser{}, false
	}
	return u, ok
}

// handleEvent re-populates state from provider notifications: sign-in, token
// refresh, and sign-out all flow through here for the life of the process.
func (m *Manager) handleEvent(ev identity.Event) {
	switch ev.Kind {
	case identity.EventSignedOut:
		m.clear()
	case identity.EventSignedIn, identity.EventTokenRefreshed:
		if ev.Session == nil || ev.User == nil {
			return
		}
		m.adopt(*ev.Session, *ev.User)
		m.persist(*ev.Session)
		m.fetchProfileOnce(context.Background(), ev.User.ID)
	}
}

// fetchProfileWithRetry polls the store until a row is visible or the budget
// is exhausted. Reports whether a profile was adopted.
func (m *Manager) fetchProfileWithRetry(ctx context.Context, userID string) bool {
	var found profile.Profile
	err := retry.Do(ctx, m.opts.RetryCount, m.opts.RetryBackoff, m.opts.Clock, func(ctx context.Context) (bool, error) {
		p, err := m.profiles.Get(ctx, userID)
		if errors.Is(err, profile.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		found = p
		return true, nil
	})
	if err != nil {
		if !errors.Is(err, retry.ErrExhausted) {
			m.logger.Warn("profile fetch", "user_id", userID, "error", err)
		}
		return false
	}
	m.setProfile(&found)
	return true
}

func (m *Manager) fetchProfileOnce(ctx context.Context, userID string) {
	p, err := m.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			m.logger.Warn("profile fetch", "user_id", userID, "error", err)
		}
		return
	}
	m.setProfile(&p)
}

func (m *Manager) adopt(sess identity.Session, user identity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &sess
	m.user = &user
}

func (m *Manager) setProfile(p *profile.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.user = nil
	m.profile = nil
}

func (m *Manager) persist(sess identity.Session) {
	if err := m.cache.SaveSession(sess); err != nil {
		m.logger.Warn("persist session", "error", err)
	}
}
