package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/models"
)

func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.app.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get categories")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(categories))
}

func (h *Handler) BrowseProducts(c *gin.Context) {
	categoryID, ok := paramID(c)
	if !ok {
		return
	}

	var q models.BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid query parameters", []global.ValidationError{
			{Field: "query", Message: err.Error(), Code: "invalid_format"},
		}))
		return
	}
	q.CategoryID = categoryID

	page, err := h.app.Catalog.Browse(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err, "Failed to get products")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(page))
}
