package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/address"
	"github.com/a2b-grocery/storefront/pkg/api"
	"github.com/a2b-grocery/storefront/pkg/bag"
	"github.com/a2b-grocery/storefront/pkg/cart"
	"github.com/a2b-grocery/storefront/pkg/catalog"
	"github.com/a2b-grocery/storefront/pkg/checkout"
	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/language"
	"github.com/a2b-grocery/storefront/pkg/session"
	"github.com/a2b-grocery/storefront/pkg/storefront"
)

type Handler struct {
	app    *storefront.App
	logger *zap.Logger
}

func NewHandler(app *storefront.App) *Handler {
	return &Handler{app: app, logger: app.Logger.Named("router")}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := map[string]string{
		"status":    "OK",
		"cart_mode": h.app.Config.CartMode,
		"store":     h.app.Config.StoreDriver,
	}
	if p, ok := h.app.Store.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			h.logger.Error("store ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, global.ErrorResponse("Store connection failed", nil))
			return
		}
		status["store_status"] = "Connected"
	}
	c.JSON(http.StatusOK, global.SuccessResponse(status))
}

func invalidBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "json_parse_error"},
	}))
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid id", []global.ValidationError{
			{Field: "id", Message: "id must be a positive integer", Code: "invalid_format"},
		}))
		return 0, false
	}
	return id, true
}

// respondError maps a domain or gateway error onto a status code and the
// response envelope. fallback is the message for unexpected failures.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if verrs := global.ValidationErrors(err); verrs != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Validation failed", verrs))
		return
	}

	var netErr *api.NetworkError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, global.RedirectResponse("Your session has expired. Please login again", redirectHome))
	case errors.Is(err, bag.ErrNotAuthenticated), errors.Is(err, checkout.ErrNoSession):
		c.JSON(http.StatusUnauthorized, global.RedirectResponse(messageOr(h.bagMessage(), "Please login to continue"), redirectLogin))
	case errors.Is(err, address.ErrRegisteredOnly), errors.Is(err, session.ErrGuestNotAllowed), errors.Is(err, api.ErrForbidden):
		c.JSON(http.StatusForbidden, global.ErrorResponse(api.Message(err, "This action is not allowed"), nil))
	case errors.Is(err, checkout.ErrOrderNotFound), errors.Is(err, cart.ErrItemNotFound), errors.Is(err, api.ErrNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse(api.Message(err, "Not found"), nil))
	case errors.Is(err, checkout.ErrNotCancellable):
		c.JSON(http.StatusConflict, global.ErrorResponse("Order can no longer be cancelled", nil))
	case errors.Is(err, bag.ErrNegativeQuantity), errors.Is(err, cart.ErrNegativeQuantity):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Quantity cannot be negative", []global.ValidationError{
			{Field: "quantity", Message: "quantity cannot be negative", Code: "gte"},
		}))
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Quantity must be at least 1", []global.ValidationError{
			{Field: "quantity", Message: "quantity must be at least 1", Code: "min"},
		}))
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Your cart is empty", nil))
	case errors.Is(err, session.ErrNoPendingLogin), errors.Is(err, language.ErrUnsupportedLanguage), errors.Is(err, catalog.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, global.ErrorResponse(err.Error(), nil))
	case errors.As(err, &netErr), errors.Is(err, api.ErrServer):
		h.logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusBadGateway, global.ErrorResponse(api.Message(err, fallback), nil))
	default:
		h.logger.Error(fallback, zap.Error(err))
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse(api.Message(err, fallback), nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse(fallback, nil))
	}
}

func (h *Handler) bagMessage() string {
	if h.app.Bag == nil {
		return ""
	}
	return h.app.Bag.Error()
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
