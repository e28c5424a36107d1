// Package cart is the device-local cart used when no backend bag exists.
// Every operation reads and writes the durable "cart" record directly.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/models"
	"github.com/a2b-grocery/storefront/pkg/storage"
)

var (
	ErrInvalidQuantity  = errors.New("cart: quantity must be at least 1")
	ErrNegativeQuantity = errors.New("cart: quantity cannot be negative")
	ErrItemNotFound     = errors.New("cart: item not in cart")
)

type Cart struct {
	store  storage.Store
	logger *zap.Logger
	mu     sync.Mutex
}

func New(store storage.Store, logger *zap.Logger) *Cart {
	return &Cart{store: store, logger: logger}
}

func (c *Cart) load(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	err := storage.GetJSON(ctx, c.store, storage.KeyCart, &items)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return []models.CartItem{}, nil
	case errors.Is(err, storage.ErrCorrupt):
		c.logger.Warn("discarding corrupt cart record", zap.Error(err))
		return []models.CartItem{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

func (c *Cart) save(ctx context.Context, items []models.CartItem) error {
	if err := storage.SetJSON(ctx, c.store, storage.KeyCart, items); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (c *Cart) Items(ctx context.Context) ([]models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Add merges quantity into an existing line for the product or appends a
// new line.
func (c *Cart) Add(ctx context.Context, product models.Product, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].Product.ID == product.ID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.CartItem{Product: product, Quantity: quantity})
	}

	if err := c.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update sets the quantity of a line. Zero removes it.
func (c *Cart) Update(ctx context.Context, productID string, quantity int) ([]models.CartItem, error) {
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if quantity == 0 {
		return c.Remove(ctx, productID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity = quantity
			if err := c.save(ctx, items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	return nil, ErrItemNotFound
}

func (c *Cart) Remove(ctx context.Context, productID string) ([]models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, item := range items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	if err := c.save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, []models.CartItem{})
}

func (c *Cart) Total(ctx context.Context) (float64, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for i := range items {
		total += items[i].Subtotal()
	}
	return total, nil
}

func (c *Cart) Count(ctx context.Context) (int, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count, nil
}
