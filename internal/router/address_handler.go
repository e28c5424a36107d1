package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/a2b-grocery/storefront/pkg/address"
	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/models"
)

type addressView struct {
	Flow       string           `json:"flow"`
	HasAddress bool             `json:"hasAddress"`
	Active     *models.Address  `json:"active"`
	Addresses  []models.Address `json:"addresses,omitempty"`
	IsLoading  bool             `json:"isLoading"`
}

func (h *Handler) addressView() addressView {
	m := h.app.Addresses
	view := addressView{IsLoading: m.IsLoading()}

	switch sel := m.Selection().(type) {
	case address.Registered:
		view.Flow = "registered"
		view.Addresses = sel.Addresses
		view.Active = sel.Selected
	case address.Guest:
		view.Flow = "guest"
		view.Active = sel.Address
	}
	view.HasAddress = view.Active != nil
	return view
}

func (h *Handler) GetAddresses(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.addressView()))
}

func (h *Handler) RefreshAddresses(c *gin.Context) {
	ctx := c.Request.Context()
	if h.app.Session.IsRegistered() {
		h.app.Addresses.RefreshAddresses(ctx)
	} else {
		h.app.Addresses.RefreshGuestAddress(ctx)
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.addressView()))
}

func (h *Handler) CreateAddress(c *gin.Context) {
	var form address.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		invalidBody(c, err)
		return
	}

	created, err := h.app.Addresses.Create(c.Request.Context(), form)
	if err != nil {
		h.respondError(c, err, "Failed to save address")
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{
		"address":   created,
		"selection": h.addressView(),
	}))
}

func (h *Handler) GetAddress(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	found, err := h.app.Addresses.Address(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get address")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(found))
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var form address.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		invalidBody(c, err)
		return
	}

	updated, err := h.app.Addresses.Update(c.Request.Context(), id, form)
	if err != nil {
		h.respondError(c, err, "Failed to update address")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(updated))
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.app.Addresses.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete address")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.addressView()))
}

func (h *Handler) SelectAddress(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.app.Addresses.SelectByID(id); err != nil {
		if errors.Is(err, address.ErrRegisteredOnly) {
			h.respondError(c, err, "Failed to select address")
			return
		}
		c.JSON(http.StatusNotFound, global.ErrorResponse("Address not found", []global.ValidationError{
			{Field: "id", Message: err.Error(), Code: "not_found"},
		}))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.addressView()))
}

func (h *Handler) SetDefaultAddress(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.app.Addresses.SetDefault(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to set default address")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.addressView()))
}

// ReverseGeocode resolves ?lat=&lng= to a street address. Without
// coordinates it answers with the default map center.
func (h *Handler) ReverseGeocode(c *gin.Context) {
	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw == "" && lngRaw == "" {
		c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"location": models.DefaultLocation, "address": ""}))
		return
	}

	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lng, errLng := strconv.ParseFloat(lngRaw, 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid coordinates", []global.ValidationError{
			{Field: "location", Message: "lat and lng must be valid coordinates", Code: "invalid_format"},
		}))
		return
	}

	formatted, err := h.app.Geocoder.Reverse(c.Request.Context(), lat, lng)
	if err != nil {
		h.respondError(c, err, "Failed to resolve address")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"location": models.Location{Lat: lat, Lng: lng},
		"address":  formatted,
	}))
}
