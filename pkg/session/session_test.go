package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/api"
	"github.com/a2b-grocery/storefront/pkg/models"
	"github.com/a2b-grocery/storefront/pkg/storage"
)

type mockBackend struct {
	CheckCustomerExistFunc func(ctx context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error)
	LoginFunc              func(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

func (m *mockBackend) CheckCustomerExist(ctx context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error) {
	return m.CheckCustomerExistFunc(ctx, phone, countryCode)
}

func (m *mockBackend) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.LoginFunc(ctx, req)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newDemoManager(t *testing.T, store storage.Store) *Manager {
	t.Helper()
	demo, err := NewDemoAuthenticator("1234")
	require.NoError(t, err)
	return NewManager(context.Background(), store, demo, zap.NewNop())
}

func TestManager_StartsAnonymous(t *testing.T) {
	m := newDemoManager(t, storage.NewMemoryStore())

	assert.Nil(t, m.Current())
	assert.Equal(t, StateAnonymous, m.State())
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, m.Token())
}

func TestManager_DemoLogin(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newDemoManager(t, store)

	var notified []*models.Session
	m.Subscribe(func(_ context.Context, s *models.Session) { notified = append(notified, s) })

	require.NoError(t, m.BeginLogin(ctx, BeginLoginRequest{Phone: "01012345678", CountryCode: 20, Name: "Mona"}))
	assert.Equal(t, StateOTPPending, m.State())

	ok, err := m.VerifyOTP(ctx, "0000", "", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateOTPPending, m.State())
	assert.Empty(t, notified)

	ok, err = m.VerifyOTP(ctx, "1234", "", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.True(t, m.IsAuthenticated())
	assert.False(t, m.IsRegistered())
	require.Len(t, notified, 1)
	assert.Equal(t, "Mona", notified[0].Name)

	var stored models.Session
	require.NoError(t, storage.GetJSON(ctx, store, storage.KeySession, &stored))
	assert.Equal(t, "01012345678", stored.Phone)
}

func TestManager_BeginLoginValidation(t *testing.T) {
	m := newDemoManager(t, storage.NewMemoryStore())

	err := m.BeginLogin(context.Background(), BeginLoginRequest{Phone: "0101"})
	assert.Error(t, err)
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManager_VerifyWithoutPhone(t *testing.T) {
	m := newDemoManager(t, storage.NewMemoryStore())

	ok, err := m.VerifyOTP(context.Background(), "1234", "", 0)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoPendingLogin)
}

func TestManager_Guest(t *testing.T) {
	ctx := context.Background()
	m := newDemoManager(t, storage.NewMemoryStore())

	s, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsGuest)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.False(t, m.IsAuthenticated())
	assert.True(t, m.IsGuest())
}

func TestManager_GuestNotAllowedWithBackend(t *testing.T) {
	m := NewManager(context.Background(), storage.NewMemoryStore(), NewAPIAuthenticator(&mockBackend{}), zap.NewNop())

	assert.False(t, m.SupportsGuest())
	_, err := m.LoginAsGuest(context.Background())
	assert.ErrorIs(t, err, ErrGuestNotAllowed)
}

func TestManager_LogoutLeavesEmptyStateOnReload(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newDemoManager(t, store)

	require.NoError(t, m.BeginLogin(ctx, BeginLoginRequest{Phone: "01012345678", Name: "Mona"}))
	ok, err := m.VerifyOTP(ctx, "1234", "", 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte(`[{"quantity":1}]`)))

	var signedOut bool
	m.Subscribe(func(_ context.Context, s *models.Session) { signedOut = s == nil })

	require.NoError(t, m.Logout(ctx))
	require.NoError(t, m.Logout(ctx))
	assert.True(t, signedOut)

	_, err = store.Get(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	reloaded := newDemoManager(t, store)
	assert.Equal(t, StateAnonymous, reloaded.State())
	assert.Nil(t, reloaded.Current())
}

func TestManager_DiscardsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeySession, []byte("{broken")))

	m := newDemoManager(t, store)
	assert.Equal(t, StateAnonymous, m.State())

	_, err := store.Get(ctx, storage.KeySession)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_TokenExpiry(t *testing.T) {
	tests := []struct {
		name      string
		token     func(t *testing.T) string
		wantState State
	}{
		{
			name:      "expired jwt",
			token:     func(t *testing.T) string { return signedToken(t, time.Now().Add(-time.Hour)) },
			wantState: StateAnonymous,
		},
		{
			name:      "valid jwt",
			token:     func(t *testing.T) string { return signedToken(t, time.Now().Add(time.Hour)) },
			wantState: StateAuthenticated,
		},
		{
			name:      "opaque token",
			token:     func(*testing.T) string { return "opaque-token" },
			wantState: StateAuthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryStore()
			require.NoError(t, storage.SetJSON(ctx, store, storage.KeySession, models.Session{
				ID:    "42",
				Name:  "Mona",
				Token: tt.token(t),
			}))

			m := newDemoManager(t, store)
			assert.Equal(t, tt.wantState, m.State())
		})
	}
}

func TestManager_Expire(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, storage.SetJSON(ctx, store, storage.KeySession, models.Session{ID: "42", Token: "tok"}))
	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte(`[]`)))

	m := newDemoManager(t, store)
	require.True(t, m.IsRegistered())

	var calls int
	m.Subscribe(func(context.Context, *models.Session) { calls++ })

	m.Expire(ctx)
	m.Expire(ctx)

	assert.Equal(t, 1, calls)
	assert.Equal(t, StateAnonymous, m.State())
	_, err := store.Get(ctx, storage.KeySession)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, storage.KeyCart)
	assert.NoError(t, err)
}

func TestAPIAuthenticator_Login(t *testing.T) {
	tests := []struct {
		name    string
		resp    *models.LoginResponse
		err     error
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "success",
			resp:   &models.LoginResponse{CustomerID: 42, DisplayName: "Mona", PhoneNumber: "01012345678", Token: "tok"},
			wantOK: true,
		},
		{
			name: "rejected by backend",
			err:  &api.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid OTP"},
		},
		{
			name: "missing token",
			resp: &models.LoginResponse{CustomerID: 42},
		},
		{
			name:    "server failure",
			err:     &api.APIError{StatusCode: http.StatusInternalServerError},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := &mockBackend{
				LoginFunc: func(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
					assert.Equal(t, "5555", req.OTP)
					assert.Equal(t, 20, req.CountryCode)
					return tt.resp, tt.err
				},
			}
			m := NewManager(ctx, storage.NewMemoryStore(), NewAPIAuthenticator(backend), zap.NewNop())

			ok, err := m.VerifyOTP(ctx, "5555", "01012345678", 20)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, "tok", m.Token())
				assert.Equal(t, "42", m.Current().ID)
				assert.True(t, m.IsRegistered())
			} else {
				assert.Nil(t, m.Current())
			}
		})
	}
}

func TestAPIAuthenticator_CheckCustomerExist(t *testing.T) {
	backend := &mockBackend{
		CheckCustomerExistFunc: func(_ context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error) {
			return &models.CheckCustomerExistResponse{IsExist: true, UserName: "Mona"}, nil
		},
	}
	m := NewManager(context.Background(), storage.NewMemoryStore(), NewAPIAuthenticator(backend), zap.NewNop())

	resp, err := m.CheckCustomerExist(context.Background(), "01012345678", 20)
	require.NoError(t, err)
	assert.True(t, resp.IsExist)
	assert.Equal(t, StateAnonymous, m.State())
}
