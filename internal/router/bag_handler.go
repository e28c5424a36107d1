package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/models"
)

type bagView struct {
	Bag       *models.Bag `json:"bag"`
	Total     float64     `json:"total"`
	Count     int         `json:"count"`
	Pending   map[int]int `json:"pending"`
	Error     string      `json:"error,omitempty"`
	IsLoading bool        `json:"isLoading"`
}

func (h *Handler) bagView() bagView {
	b := h.app.Bag
	return bagView{
		Bag:       b.Bag(),
		Total:     b.Total(),
		Count:     b.Count(),
		Pending:   b.Pending(),
		Error:     b.Error(),
		IsLoading: b.IsLoading(),
	}
}

type addToBagRequest struct {
	PackID   int    `json:"packId" binding:"required,gt=0"`
	Quantity *int   `json:"quantity"`
	Comment  string `json:"comment"`
}

type updateBagItemRequest struct {
	Quantity *int   `json:"quantity" binding:"required"`
	Comment  string `json:"comment"`
}

func (h *Handler) GetBag(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.bagView()))
}

func (h *Handler) RefreshBag(c *gin.Context) {
	if err := h.app.Bag.Refresh(c.Request.Context()); err != nil {
		h.respondError(c, err, "Failed to load bag")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.bagView()))
}

// AddToBag adds quantity (default 1) to the item. The change is sent after
// the debounce window, so the response carries it under pending.
func (h *Handler) AddToBag(c *gin.Context) {
	var req addToBagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}
	delta := 1
	if req.Quantity != nil {
		delta = *req.Quantity
	}

	if err := h.app.Bag.AddToBag(c.Request.Context(), req.PackID, delta, req.Comment); err != nil {
		h.respondError(c, err, "Failed to update bag")
		return
	}
	c.JSON(http.StatusAccepted, global.SuccessResponse(h.bagView()))
}

func (h *Handler) UpdateBagItem(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req updateBagItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	if err := h.app.Bag.UpdateBagItem(c.Request.Context(), id, *req.Quantity, req.Comment); err != nil {
		h.respondError(c, err, "Failed to update bag")
		return
	}
	c.JSON(http.StatusAccepted, global.SuccessResponse(h.bagView()))
}

func (h *Handler) RemoveFromBag(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.app.Bag.RemoveFromBag(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to update bag")
		return
	}
	c.JSON(http.StatusAccepted, global.SuccessResponse(h.bagView()))
}
