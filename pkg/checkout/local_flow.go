package checkout

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/models"
)

type CartSource interface {
	Items(ctx context.Context) ([]models.CartItem, error)
	Clear(ctx context.Context) error
}

// LocalFlow simulates placement: the order is written to the order log and
// the local cart is cleared.
type LocalFlow struct {
	cart      CartSource
	log       OrderLog
	session   SessionSource
	addresses AddressSource
	fee       float64
	logger    *zap.Logger
	now       func() time.Time
}

func NewLocalFlow(cart CartSource, log OrderLog, session SessionSource, addresses AddressSource, fee float64, logger *zap.Logger) *LocalFlow {
	return &LocalFlow{
		cart:      cart,
		log:       log,
		session:   session,
		addresses: addresses,
		fee:       fee,
		logger:    logger,
		now:       time.Now,
	}
}

func (f *LocalFlow) Summary(ctx context.Context) (*Summary, error) {
	items, err := f.cart.Items(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(items))
	var subtotal float64
	for i := range items {
		p := items[i].Product
		lineTotal := items[i].Subtotal()
		subtotal += lineTotal
		lines = append(lines, Line{
			ID:        p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Unit:      p.Unit,
			Price:     p.Price,
			Quantity:  items[i].Quantity,
			LineTotal: lineTotal,
		})
	}
	return newSummary(lines, subtotal, f.fee), nil
}

func (f *LocalFlow) PlaceOrder(ctx context.Context, form Form) (*models.Order, error) {
	session := f.session.Current()
	if session == nil {
		return nil, ErrNoSession
	}
	form, err := resolveForm(ctx, form, session, f.addresses)
	if err != nil {
		return nil, err
	}

	summary, err := f.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if len(summary.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := f.now().UTC()
	order := models.Order{
		ID:              models.GenerateOrderNumber(now),
		UserID:          session.ID,
		Items:           summary.orderItems(),
		Status:          models.OrderStatusPending,
		DeliveryAddress: form.DeliveryAddress,
		Phone:           form.Phone,
		Notes:           form.Notes,
		CreatedAt:       now,
	}
	order.CalculateTotals(f.fee)

	if err := f.log.Append(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}
	if err := f.cart.Clear(ctx); err != nil {
		f.logger.Error("failed to clear cart after order", zap.String("order_id", order.ID), zap.Error(err))
	}

	f.logger.Info("order placed", zap.String("order_id", order.ID), zap.Float64("total", order.Total))
	return &order, nil
}

// Orders lists the signed-in owner's orders, filtered by status and paged
// when the query asks for it.
func (f *LocalFlow) Orders(ctx context.Context, q models.OrderQuery) ([]models.Order, error) {
	session := f.session.Current()
	if session == nil {
		return nil, ErrNoSession
	}
	orders, err := f.log.List(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	filtered := orders[:0]
	for _, o := range orders {
		if q.Status == "" || string(o.Status) == q.Status {
			filtered = append(filtered, o)
		}
	}
	return paginate(filtered, q.Page, q.Limit), nil
}

func paginate(orders []models.Order, page, limit int) []models.Order {
	if limit <= 0 {
		return orders
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(orders) {
		return []models.Order{}
	}
	end := start + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end]
}

func (f *LocalFlow) Order(ctx context.Context, id string) (*models.Order, error) {
	session := f.session.Current()
	if session == nil {
		return nil, ErrNoSession
	}
	order, err := f.log.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != session.ID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Track is Order: simulated orders carry their status in the log.
func (f *LocalFlow) Track(ctx context.Context, id string) (*models.Order, error) {
	return f.Order(ctx, id)
}

func (f *LocalFlow) Cancel(ctx context.Context, id string) (*models.Order, error) {
	order, err := f.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, ErrNotCancellable
	}
	if err := f.log.UpdateStatus(ctx, id, models.OrderStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	order.Status = models.OrderStatusCancelled
	f.logger.Info("order cancelled", zap.String("order_id", id))
	return order, nil
}
