package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/models"
	"github.com/a2b-grocery/storefront/pkg/session"
)

type sessionView struct {
	State           session.State              `json:"state"`
	User            *models.Session            `json:"user"`
	IsAuthenticated bool                       `json:"isAuthenticated"`
	IsGuest         bool                       `json:"isGuest"`
	GuestAllowed    bool                       `json:"guestAllowed"`
	Pending         *session.BeginLoginRequest `json:"pending,omitempty"`
}

func (h *Handler) sessionView() sessionView {
	s := h.app.Session
	user := s.Current()
	if user != nil {
		user.Token = ""
	}
	return sessionView{
		State:           s.State(),
		User:            user,
		IsAuthenticated: s.IsAuthenticated(),
		IsGuest:         s.IsGuest(),
		GuestAllowed:    s.SupportsGuest(),
		Pending:         s.Pending(),
	}
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.sessionView()))
}

type checkCustomerRequest struct {
	Phone       string `json:"phone" binding:"required"`
	CountryCode int    `json:"countryCode"`
}

func (h *Handler) CheckCustomerExist(c *gin.Context) {
	var req checkCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	resp, err := h.app.Session.CheckCustomerExist(c.Request.Context(), req.Phone, req.CountryCode)
	if err != nil {
		h.respondError(c, err, "Failed to check customer")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(resp))
}

func (h *Handler) BeginLogin(c *gin.Context) {
	var req session.BeginLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	if err := h.app.Session.BeginLogin(c.Request.Context(), req); err != nil {
		h.respondError(c, err, "Failed to start login")
		return
	}
	c.JSON(http.StatusAccepted, global.APIResponse{
		Success: true,
		Message: "OTP sent to your phone",
		Data:    h.sessionView(),
	})
}

type verifyOTPRequest struct {
	OTP         string `json:"otp" binding:"required"`
	Phone       string `json:"phone"`
	CountryCode int    `json:"countryCode"`
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Please enter the OTP", []global.ValidationError{
			{Field: "otp", Message: "otp is required", Code: "required"},
		}))
		return
	}

	ok, err := h.app.Session.VerifyOTP(c.Request.Context(), req.OTP, req.Phone, req.CountryCode)
	if err != nil {
		h.respondError(c, err, "Failed to verify OTP")
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid OTP. Please try again", []global.ValidationError{
			{Field: "otp", Message: "otp was rejected", Code: "invalid"},
		}))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.sessionView()))
}

func (h *Handler) LoginAsGuest(c *gin.Context) {
	if _, err := h.app.Session.LoginAsGuest(c.Request.Context()); err != nil {
		h.respondError(c, err, "Failed to continue as guest")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.sessionView()))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.app.Logout(c.Request.Context()); err != nil {
		h.respondError(c, err, "Failed to logout")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.sessionView()))
}

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (h *Handler) GetLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"language": h.app.Language.Language(),
		"rtl":      h.app.Language.IsRTL(),
	}))
}

func (h *Handler) SetLanguage(c *gin.Context) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}
	if err := h.app.Language.Set(c.Request.Context(), req.Language); err != nil {
		h.respondError(c, err, "Failed to set language")
		return
	}
	h.GetLanguage(c)
}
