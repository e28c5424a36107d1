package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a2b-grocery/storefront/pkg/checkout"
	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/models"
)

func (h *Handler) GetCheckoutSummary(c *gin.Context) {
	summary, err := h.app.Checkout.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to build order summary")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(summary))
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		invalidBody(c, err)
		return
	}

	order, err := h.app.Checkout.PlaceOrder(c.Request.Context(), form)
	if err != nil {
		h.respondError(c, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, global.APIResponse{
		Success:  true,
		Data:     order,
		Message:  "Order placed successfully",
		Redirect: "/order-success",
	})
}

func (h *Handler) GetOrders(c *gin.Context) {
	var q models.OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid query parameters", []global.ValidationError{
			{Field: "query", Message: err.Error(), Code: "invalid_format"},
		}))
		return
	}

	orders, err := h.app.Checkout.Orders(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err, "Failed to get orders")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.app.Checkout.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to get order")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (h *Handler) TrackOrder(c *gin.Context) {
	order, err := h.app.Checkout.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to track order")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.app.Checkout.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to cancel order")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}
