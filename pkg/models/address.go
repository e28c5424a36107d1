package models

// Address is a delivery address. The optional structured fields are only
// sent when set.
type Address struct {
	ID                  int     `json:"id,omitempty"`
	AddressTag          string  `json:"addressTag" validate:"required"`
	Description         string  `json:"description" validate:"required"`
	Street              string  `json:"street,omitempty"`
	Building            string  `json:"building,omitempty"`
	Floor               *int    `json:"floor,omitempty" validate:"omitempty,gte=0"`
	ApartmentNumber     *int    `json:"appartmentNumber,omitempty" validate:"omitempty,gte=0"`
	Landmark            string  `json:"landmark,omitempty"`
	Latitude            float64 `json:"latitude" validate:"latitude"`
	Longitude           float64 `json:"longitude" validate:"longitude"`
	NewContact          bool    `json:"newContact,omitempty"`
	ContactPerson       string  `json:"contactPerson,omitempty"`
	ContactPersonNumber string  `json:"contactPersonNumber,omitempty"`
	IsDefault           bool    `json:"isDefault"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultLocation is the map center used before the user picks a point (Cairo).
var DefaultLocation = Location{Lat: 30.0444, Lng: 31.2357}

// GuestAddressRequest registers the single address of an anonymous device.
type GuestAddressRequest struct {
	FCMToken    string  `json:"fcmToken"`
	Description string  `json:"description"`
	AddressTag  string  `json:"addressTag"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type PaginatedAddressResponse struct {
	Data       []Address `json:"data"`
	TotalCount int       `json:"totalCount"`
	PageNumber int       `json:"pageNumber"`
	PageSize   int       `json:"pageSize"`
}

// DefaultAddress returns the first address marked as default, or the first
// address if none is default, or nil for an empty list.
func DefaultAddress(addresses []Address) *Address {
	for i := range addresses {
		if addresses[i].IsDefault {
			a := addresses[i]
			return &a
		}
	}
	if len(addresses) > 0 {
		a := addresses[0]
		return &a
	}
	return nil
}

// Label is the single-line form used for order delivery addresses.
func (a *Address) Label() string {
	if a == nil {
		return ""
	}
	if a.AddressTag == "" {
		return a.Description
	}
	return a.AddressTag + " - " + a.Description
}
