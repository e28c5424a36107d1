package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/models"
)

type cartView struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func newCartView(items []models.CartItem) cartView {
	view := cartView{Items: items}
	for i := range items {
		view.Total += items[i].Subtotal()
		view.Count += items[i].Quantity
	}
	return view
}

func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.app.Cart.Items(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newCartView(items)))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	items, err := h.app.Cart.Add(c.Request.Context(), req.Product, req.Quantity)
	if err != nil {
		h.respondError(c, err, "Failed to add to cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newCartView(items)))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	items, err := h.app.Cart.Update(c.Request.Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		h.respondError(c, err, "Failed to update cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newCartView(items)))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	items, err := h.app.Cart.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to remove from cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newCartView(items)))
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.app.Cart.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newCartView([]models.CartItem{})))
}
