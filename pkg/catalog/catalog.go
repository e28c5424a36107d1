// Package catalog reads categories and paged product listings. Nothing is
// cached: every call goes to the backend.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/models"
)

var ErrInvalidCategory = errors.New("catalog: category id must be positive")

type Client interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	BrowseProducts(ctx context.Context, q models.BrowseQuery) (*models.BrowseProductsResponse, error)
}

type Browser struct {
	client Client
	logger *zap.Logger
}

func NewBrowser(client Client, logger *zap.Logger) *Browser {
	return &Browser{client: client, logger: logger}
}

func (b *Browser) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := b.client.GetCategories(ctx)
	if err != nil {
		b.logger.Error("failed to fetch categories", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// Browse returns one page of a category, optionally narrowed to a
// subcategory. Page and size default to 1 and 20.
func (b *Browser) Browse(ctx context.Context, q models.BrowseQuery) (*models.BrowseProductsResponse, error) {
	if q.CategoryID <= 0 {
		return nil, ErrInvalidCategory
	}
	q.Normalize()

	resp, err := b.client.BrowseProducts(ctx, q)
	if err != nil {
		b.logger.Error("failed to browse products",
			zap.Int("category_id", q.CategoryID),
			zap.Int("sub_category_id", q.SubCategoryID),
			zap.Int("page", q.Page),
			zap.Error(err))
		return nil, fmt.Errorf("failed to browse products: %w", err)
	}
	if resp.Page == 0 {
		resp.Page = q.Page
	}
	if resp.PageSize == 0 {
		resp.PageSize = q.PageSize
	}
	if resp.Products == nil {
		resp.Products = []models.Pack{}
	}
	return resp, nil
}
