package models

// Session is the signed-in identity persisted under the "user" key. A
// session carrying a token is registered with the backend; a guest session
// only exists in the demo configuration.
type Session struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Token       string  `json:"token,omitempty"`
	CountryCode int     `json:"countryCode,omitempty"`
	IsGuest     bool    `json:"isGuest,omitempty"`
	Wallet      float64 `json:"wallet,omitempty"`
	Points      int     `json:"points,omitempty"`
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && !s.IsGuest
}

func (s *Session) IsRegistered() bool {
	return s != nil && s.Token != ""
}

type CheckCustomerExistResponse struct {
	IsExist  bool   `json:"isExist"`
	UserName string `json:"userName"`
}

type LoginRequest struct {
	FCMToken    *string `json:"fcmToken"`
	OTP         string  `json:"otp"`
	PhoneNumber string  `json:"phoneNumber"`
	CountryCode int     `json:"countryCode"`
}

type LoginResponse struct {
	CustomerID      int      `json:"customerId"`
	Wallet          float64  `json:"wallet"`
	Points          int      `json:"points"`
	PhoneNumber     string   `json:"phoneNumber"`
	DisplayName     string   `json:"displayName"`
	Token           string   `json:"token"`
	IsExist         bool     `json:"isExist"`
	SelectedAddress *Address `json:"selectedAddress"`
}
