package api

import (
	"context"

	"github.com/a2b-grocery/storefront/pkg/models"
)

func (c *Client) GetBag(ctx context.Context) (*models.Bag, error) {
	var bag models.Bag
	if err := c.get(ctx, "/customer/api/Bags", nil, &bag); err != nil {
		return nil, err
	}
	return &bag, nil
}

// MutateBag sets one line to an absolute quantity; 0 removes it. The
// response is the whole bag after the change.
func (c *Client) MutateBag(ctx context.Context, req models.MutateBagRequest) (*models.Bag, error) {
	var bag models.Bag
	if err := c.post(ctx, "/customer/api/Bags/MutateBag", req, &bag); err != nil {
		return nil, err
	}
	return &bag, nil
}
