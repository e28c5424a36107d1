package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/a2b-grocery/storefront/pkg/api"
	"github.com/a2b-grocery/storefront/pkg/models"
)

// Attempt is one OTP exchange.
type Attempt struct {
	Phone       string
	CountryCode int
	Name        string
	OTP         string
}

// Authenticator turns a phone and OTP into a session. Login returns an error
// matching ErrOTPRejected when the code is refused.
type Authenticator interface {
	CheckCustomerExist(ctx context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error)
	Login(ctx context.Context, attempt Attempt) (*models.Session, error)
}

// GuestIssuer is implemented by authenticators that allow browsing as a guest.
type GuestIssuer interface {
	Guest() *models.Session
}

type BackendClient interface {
	CheckCustomerExist(ctx context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// APIAuthenticator verifies OTPs against the backend accounts endpoints.
type APIAuthenticator struct {
	client BackendClient
}

func NewAPIAuthenticator(client BackendClient) *APIAuthenticator {
	return &APIAuthenticator{client: client}
}

func (a *APIAuthenticator) CheckCustomerExist(ctx context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error) {
	return a.client.CheckCustomerExist(ctx, phone, countryCode)
}

func (a *APIAuthenticator) Login(ctx context.Context, attempt Attempt) (*models.Session, error) {
	resp, err := a.client.Login(ctx, models.LoginRequest{
		OTP:         attempt.OTP,
		PhoneNumber: attempt.Phone,
		CountryCode: attempt.CountryCode,
	})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %s", ErrOTPRejected, apiErr.Message)
		}
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrOTPRejected
	}

	name := resp.DisplayName
	if name == "" {
		name = attempt.Name
	}
	phone := resp.PhoneNumber
	if phone == "" {
		phone = attempt.Phone
	}
	return &models.Session{
		ID:          strconv.Itoa(resp.CustomerID),
		Name:        name,
		Phone:       phone,
		Token:       resp.Token,
		CountryCode: attempt.CountryCode,
		Wallet:      resp.Wallet,
		Points:      resp.Points,
	}, nil
}

// DemoAuthenticator accepts one fixed code and issues token-less sessions.
// Only a bcrypt hash of the code is held.
type DemoAuthenticator struct {
	hash []byte
	now  func() time.Time
}

func NewDemoAuthenticator(otp string) (*DemoAuthenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo otp: %w", err)
	}
	return &DemoAuthenticator{hash: hash, now: time.Now}, nil
}

func (d *DemoAuthenticator) CheckCustomerExist(_ context.Context, _ string, _ int) (*models.CheckCustomerExistResponse, error) {
	return &models.CheckCustomerExistResponse{}, nil
}

func (d *DemoAuthenticator) Login(_ context.Context, attempt Attempt) (*models.Session, error) {
	if err := bcrypt.CompareHashAndPassword(d.hash, []byte(attempt.OTP)); err != nil {
		return nil, ErrOTPRejected
	}
	return &models.Session{
		ID:          strconv.FormatInt(d.now().UnixMilli(), 10),
		Name:        attempt.Name,
		Phone:       attempt.Phone,
		CountryCode: attempt.CountryCode,
	}, nil
}

func (d *DemoAuthenticator) Guest() *models.Session {
	return &models.Session{
		ID:      fmt.Sprintf("guest-%d", d.now().UnixMilli()),
		Name:    "Guest",
		IsGuest: true,
	}
}
