// Package session owns the signed-in identity of the device: the OTP login
// flow, the persisted session record and the listeners that react when
// authentication changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/models"
	"github.com/a2b-grocery/storefront/pkg/storage"
)

type State string

const (
	StateAnonymous     State = "anonymous"
	StateOTPPending    State = "otp_pending"
	StateAuthenticated State = "authenticated"
)

var (
	ErrOTPRejected     = errors.New("session: otp rejected")
	ErrGuestNotAllowed = errors.New("session: guest login is not available")
	ErrNoPendingLogin  = errors.New("session: no login in progress")
)

// Listener runs after every authentication change with the new session,
// which is nil once signed out.
type Listener func(ctx context.Context, s *models.Session)

type BeginLoginRequest struct {
	Phone       string `json:"phone" validate:"required,min=10"`
	CountryCode int    `json:"countryCode" validate:"gte=0"`
	Name        string `json:"name"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type Manager struct {
	store  storage.Store
	auth   Authenticator
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	session *models.Session
	pending *BeginLoginRequest

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewManager loads the persisted session. Corrupt or expired records are
// deleted and the manager starts anonymous.
func NewManager(ctx context.Context, store storage.Store, auth Authenticator, logger *zap.Logger) *Manager {
	m := &Manager{
		store:  store,
		auth:   auth,
		logger: logger,
		now:    time.Now,
	}
	m.load(ctx)
	return m
}

func (m *Manager) load(ctx context.Context) {
	var s models.Session
	err := storage.GetJSON(ctx, m.store, storage.KeySession, &s)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return
	case errors.Is(err, storage.ErrCorrupt):
		m.logger.Warn("discarding corrupt session record", zap.Error(err))
		m.discard(ctx)
		return
	case err != nil:
		m.logger.Error("failed to load session", zap.Error(err))
		return
	}

	if s.Token != "" && m.tokenExpired(s.Token) {
		m.logger.Info("discarding expired session", zap.String("user_id", s.ID))
		m.discard(ctx)
		return
	}
	m.session = &s
}

// tokenExpired reports whether token is a JWT whose exp has passed. Opaque
// tokens are never considered expired here; the backend decides with a 401.
func (m *Manager) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(m.now())
}

func (m *Manager) discard(ctx context.Context) {
	if err := m.store.Delete(ctx, storage.KeySession); err != nil {
		m.logger.Error("failed to delete session record", zap.Error(err))
	}
}

// Subscribe registers a listener for authentication changes.
func (m *Manager) Subscribe(l Listener) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) notify(ctx context.Context, s *models.Session) {
	m.listenersMu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.listenersMu.RUnlock()

	for _, l := range listeners {
		l(ctx, s)
	}
}

// Current returns a copy of the session, or nil when anonymous.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// Token is the bearer token of the current session, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.IsAuthenticated()
}

func (m *Manager) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.IsRegistered()
}

func (m *Manager) IsGuest() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil && m.session.IsGuest
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.session != nil:
		return StateAuthenticated
	case m.pending != nil:
		return StateOTPPending
	default:
		return StateAnonymous
	}
}

func (m *Manager) SupportsGuest() bool {
	_, ok := m.auth.(GuestIssuer)
	return ok
}

func (m *Manager) CheckCustomerExist(ctx context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error) {
	return m.auth.CheckCustomerExist(ctx, phone, countryCode)
}

// BeginLogin records the phone awaiting an OTP.
func (m *Manager) BeginLogin(ctx context.Context, req BeginLoginRequest) error {
	if err := validate.StructCtx(ctx, req); err != nil {
		return err
	}
	m.mu.Lock()
	m.pending = &req
	m.mu.Unlock()

	m.logger.Info("otp requested", zap.String("phone", req.Phone))
	return nil
}

func (m *Manager) Pending() *BeginLoginRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pending == nil {
		return nil
	}
	p := *m.pending
	return &p
}

// VerifyOTP exchanges the code for a session. A refused code returns false
// with a nil error and leaves the session untouched. An empty phone falls
// back to the pending login.
func (m *Manager) VerifyOTP(ctx context.Context, otp, phone string, countryCode int) (bool, error) {
	m.mu.RLock()
	pending := m.pending
	m.mu.RUnlock()

	attempt := Attempt{Phone: phone, CountryCode: countryCode, OTP: otp}
	if pending != nil {
		if attempt.Phone == "" {
			attempt.Phone = pending.Phone
			attempt.CountryCode = pending.CountryCode
		}
		if attempt.Phone == pending.Phone {
			attempt.Name = pending.Name
		}
	}
	if attempt.Phone == "" {
		return false, ErrNoPendingLogin
	}

	s, err := m.auth.Login(ctx, attempt)
	if errors.Is(err, ErrOTPRejected) {
		m.logger.Info("otp rejected", zap.String("phone", attempt.Phone))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to verify otp: %w", err)
	}

	if err := m.persist(ctx, s); err != nil {
		return false, err
	}
	m.logger.Info("user signed in", zap.String("user_id", s.ID))
	m.notify(ctx, m.Current())
	return true, nil
}

func (m *Manager) LoginAsGuest(ctx context.Context) (*models.Session, error) {
	issuer, ok := m.auth.(GuestIssuer)
	if !ok {
		return nil, ErrGuestNotAllowed
	}
	s := issuer.Guest()
	if err := m.persist(ctx, s); err != nil {
		return nil, err
	}
	m.logger.Info("guest signed in", zap.String("user_id", s.ID))
	m.notify(ctx, m.Current())
	return m.Current(), nil
}

func (m *Manager) persist(ctx context.Context, s *models.Session) error {
	if err := storage.SetJSON(ctx, m.store, storage.KeySession, s); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.mu.Lock()
	m.session = s
	m.pending = nil
	m.mu.Unlock()
	return nil
}

// Logout clears the session and the local cart. Calling it while anonymous
// is a no-op apart from the storage delete.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	hadSession := m.session != nil
	m.session = nil
	m.pending = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, storage.KeySession, storage.KeyCart); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if hadSession {
		m.logger.Info("user signed out")
		m.notify(ctx, nil)
	}
	return nil
}

// Expire drops the session after the backend refused its token.
func (m *Manager) Expire(ctx context.Context) {
	m.mu.Lock()
	hadSession := m.session != nil
	m.session = nil
	m.mu.Unlock()
	if !hadSession {
		return
	}

	m.discard(ctx)
	m.logger.Warn("session expired by backend")
	m.notify(ctx, nil)
}
