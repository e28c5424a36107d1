package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a2b-grocery/storefront/pkg/models"
)

const ordersPath = "/api/orders"

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.post(ctx, ordersPath, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, q models.OrderQuery) (*models.OrdersResponse, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}

	var resp models.OrdersResponse
	if err := c.get(ctx, ordersPath, query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.get(ctx, ordersPath+"/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CancelOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.put(ctx, ordersPath+"/"+url.PathEscape(id)+"/cancel", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) TrackOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.get(ctx, ordersPath+"/"+url.PathEscape(id)+"/track", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
