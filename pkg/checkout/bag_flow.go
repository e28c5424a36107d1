package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/api"
	"github.com/a2b-grocery/storefront/pkg/models"
)

type OrdersClient interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	ListOrders(ctx context.Context, q models.OrderQuery) (*models.OrdersResponse, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CancelOrder(ctx context.Context, id string) (*models.Order, error)
	TrackOrder(ctx context.Context, id string) (*models.Order, error)
}

type BagSource interface {
	Bag() *models.Bag
	Total() float64
	Wait()
	Reset()
	Refresh(ctx context.Context) error
}

// BagFlow submits the server bag to the backend order endpoint.
type BagFlow struct {
	client    OrdersClient
	bag       BagSource
	session   SessionSource
	addresses AddressSource
	fee       float64
	logger    *zap.Logger
}

func NewBagFlow(client OrdersClient, bag BagSource, session SessionSource, addresses AddressSource, fee float64, logger *zap.Logger) *BagFlow {
	return &BagFlow{
		client:    client,
		bag:       bag,
		session:   session,
		addresses: addresses,
		fee:       fee,
		logger:    logger,
	}
}

// Summary prices lines at their discounted price when one applies; the
// subtotal is the server's.
func (f *BagFlow) Summary(_ context.Context) (*Summary, error) {
	bag := f.bag.Bag()
	var lines []Line
	for _, item := range bag.Items() {
		price := item.Price
		if item.DiscountedPrice > 0 && item.DiscountedPrice < item.Price {
			price = item.DiscountedPrice
		}
		lineTotal := item.LineTotal
		if lineTotal == 0 {
			lineTotal = price * float64(item.BagQty)
		}
		lines = append(lines, Line{
			ID:        strconv.Itoa(item.PackID),
			Name:      item.PackName,
			Image:     item.Image,
			Unit:      item.UnitOfMeasure,
			Price:     price,
			Quantity:  item.BagQty,
			LineTotal: lineTotal,
		})
	}
	return newSummary(lines, f.bag.Total(), f.fee), nil
}

func (f *BagFlow) PlaceOrder(ctx context.Context, form Form) (*models.Order, error) {
	if f.session.Current() == nil {
		return nil, ErrNoSession
	}
	form, err := resolveForm(ctx, form, f.session.Current(), f.addresses)
	if err != nil {
		return nil, err
	}

	// Unsent quantity edits must reach the server bag first.
	f.bag.Wait()

	summary, err := f.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if len(summary.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := f.client.CreateOrder(ctx, models.CreateOrderRequest{
		Items:           summary.orderItems(),
		DeliveryAddress: form.DeliveryAddress,
		Phone:           form.Phone,
		Notes:           form.Notes,
	})
	if err != nil {
		f.logger.Error("failed to place order", zap.Error(err))
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	f.logger.Info("order placed", zap.String("order_id", order.ID), zap.Float64("total", order.Total))

	f.bag.Reset()
	if err := f.bag.Refresh(ctx); err != nil {
		f.logger.Warn("failed to reload bag after order", zap.Error(err))
	}
	return order, nil
}

func (f *BagFlow) Orders(ctx context.Context, q models.OrderQuery) ([]models.Order, error) {
	resp, err := f.client.ListOrders(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if resp.Orders == nil {
		return []models.Order{}, nil
	}
	return resp.Orders, nil
}

func (f *BagFlow) Order(ctx context.Context, id string) (*models.Order, error) {
	order, err := f.client.GetOrder(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return order, nil
}

func (f *BagFlow) Track(ctx context.Context, id string) (*models.Order, error) {
	order, err := f.client.TrackOrder(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to track order: %w", err)
	}
	return order, nil
}

func (f *BagFlow) Cancel(ctx context.Context, id string) (*models.Order, error) {
	order, err := f.client.CancelOrder(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	return order, nil
}
