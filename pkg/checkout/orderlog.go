package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/models"
	"github.com/a2b-grocery/storefront/pkg/storage"
)

// StoreOrderLog keeps every order as one JSON list under the "orders" key.
type StoreOrderLog struct {
	store  storage.Store
	logger *zap.Logger
	mu     sync.Mutex
}

func NewStoreOrderLog(store storage.Store, logger *zap.Logger) *StoreOrderLog {
	return &StoreOrderLog{store: store, logger: logger}
}

func (l *StoreOrderLog) load(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := storage.GetJSON(ctx, l.store, storage.KeyOrders, &orders)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrCorrupt):
		// The raw record stays untouched.
		l.logger.Error("order log is corrupt", zap.Error(err))
		return nil, fmt.Errorf("failed to load orders: %w", err)
	case err != nil:
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

func (l *StoreOrderLog) Append(ctx context.Context, order models.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.load(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, order)
	return storage.SetJSON(ctx, l.store, storage.KeyOrders, orders)
}

func (l *StoreOrderLog) List(ctx context.Context, userID string) ([]models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.UserID == userID {
			owned = append(owned, o)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (l *StoreOrderLog) Get(ctx context.Context, id string) (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			o := orders[i]
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (l *StoreOrderLog) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.load(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			return storage.SetJSON(ctx, l.store, storage.KeyOrders, orders)
		}
	}
	return ErrOrderNotFound
}
