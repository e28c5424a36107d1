// Package checkout turns the current bag or local cart into an order and
// reads the order history back.
package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/a2b-grocery/storefront/pkg/models"
)

var (
	ErrEmptyCart      = errors.New("checkout: cart is empty")
	ErrNoSession      = errors.New("checkout: sign in to place orders")
	ErrOrderNotFound  = errors.New("checkout: order not found")
	ErrNotCancellable = errors.New("checkout: order can no longer be cancelled")
)

// Flow is one checkout configuration: the backend bag with server orders,
// or the local cart with a simulated order log.
type Flow interface {
	Summary(ctx context.Context) (*Summary, error)
	PlaceOrder(ctx context.Context, form Form) (*models.Order, error)
	Orders(ctx context.Context, q models.OrderQuery) ([]models.Order, error)
	Order(ctx context.Context, id string) (*models.Order, error)
	// Track returns the order with its latest delivery status.
	Track(ctx context.Context, id string) (*models.Order, error)
	Cancel(ctx context.Context, id string) (*models.Order, error)
}

// OrderLog stores simulated orders.
type OrderLog interface {
	Append(ctx context.Context, order models.Order) error
	// List returns the owner's orders, newest first.
	List(ctx context.Context, userID string) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
}

type AddressSource interface {
	Active() *models.Address
}

type SessionSource interface {
	Current() *models.Session
}

type Line struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type Summary struct {
	Lines       []Line  `json:"lines"`
	Count       int     `json:"count"`
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

func newSummary(lines []Line, subtotal, fee float64) *Summary {
	s := &Summary{Lines: lines, Subtotal: subtotal, DeliveryFee: fee, Total: subtotal + fee}
	for _, l := range lines {
		s.Count += l.Quantity
	}
	if s.Lines == nil {
		s.Lines = []Line{}
	}
	return s
}

func (s *Summary) orderItems() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, models.OrderItem{
			ProductID: l.ID,
			Name:      l.Name,
			Image:     l.Image,
			Unit:      l.Unit,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// Form is the checkout input. Empty phone and address fall back to the
// session phone and the selected delivery address.
type Form struct {
	Phone           string `json:"phone" validate:"required,min=10"`
	DeliveryAddress string `json:"deliveryAddress" validate:"required"`
	Notes           string `json:"notes"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func resolveForm(ctx context.Context, form Form, session *models.Session, addresses AddressSource) (Form, error) {
	form.Phone = strings.TrimSpace(form.Phone)
	form.DeliveryAddress = strings.TrimSpace(form.DeliveryAddress)
	form.Notes = strings.TrimSpace(form.Notes)

	if form.Phone == "" && session != nil {
		form.Phone = session.Phone
	}
	if form.DeliveryAddress == "" && addresses != nil {
		form.DeliveryAddress = addresses.Active().Label()
	}
	if err := validate.StructCtx(ctx, form); err != nil {
		return form, err
	}
	return form, nil
}
