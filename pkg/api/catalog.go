package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/a2b-grocery/storefront/pkg/models"
)

func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var resp models.CategoriesResponse
	if err := c.get(ctx, "/customer/api/Categories", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		return []models.Category{}, nil
	}
	return resp.Categories, nil
}

func (c *Client) BrowseProducts(ctx context.Context, q models.BrowseQuery) (*models.BrowseProductsResponse, error) {
	q.Normalize()

	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.SubCategoryID > 0 {
		query.Set("subCategoryId", strconv.Itoa(q.SubCategoryID))
	}

	var resp models.BrowseProductsResponse
	if err := c.get(ctx, fmt.Sprintf("/customer/api/Catalog/%d/browse", q.CategoryID), query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
