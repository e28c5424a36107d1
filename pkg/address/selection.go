package address

import "github.com/a2b-grocery/storefront/pkg/models"

// Selection is the active address flow. Exactly one variant is live at a
// time: Registered while the session carries a backend token, Guest
// otherwise.
type Selection interface {
	HasAddress() bool
	// Active is the address deliveries go to, or nil.
	Active() *models.Address
	isSelection()
}

type Registered struct {
	Addresses []models.Address `json:"addresses"`
	Selected  *models.Address  `json:"selected"`
}

func (r Registered) HasAddress() bool { return r.Selected != nil }
func (r Registered) Active() *models.Address { return r.Selected }
func (Registered) isSelection() {}

type Guest struct {
	Address *models.Address `json:"address"`
}

func (g Guest) HasAddress() bool { return g.Address != nil }
func (g Guest) Active() *models.Address { return g.Address }
func (Guest) isSelection() {}

func clone(sel Selection) Selection {
	switch s := sel.(type) {
	case Registered:
		out := Registered{Addresses: append([]models.Address(nil), s.Addresses...)}
		if s.Selected != nil {
			a := *s.Selected
			out.Selected = &a
		}
		return out
	case Guest:
		if s.Address == nil {
			return Guest{}
		}
		a := *s.Address
		return Guest{Address: &a}
	}
	return Guest{}
}
