package api

import (
	"context"
	"fmt"

	"github.com/a2b-grocery/storefront/pkg/models"
)

const addressesPath = "/customer/api/Addresses"

func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var resp models.PaginatedAddressResponse
	if err := c.get(ctx, addressesPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateAddress returns the full address list including the new entry.
func (c *Client) CreateAddress(ctx context.Context, address models.Address) ([]models.Address, error) {
	var resp models.PaginatedAddressResponse
	if err := c.post(ctx, addressesPath, address, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetAddress(ctx context.Context, id int) (*models.Address, error) {
	var address models.Address
	if err := c.get(ctx, fmt.Sprintf("%s/%d", addressesPath, id), nil, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (c *Client) UpdateAddress(ctx context.Context, id int, address models.Address) (*models.Address, error) {
	var updated models.Address
	if err := c.put(ctx, fmt.Sprintf("%s/%d", addressesPath, id), address, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("%s/%d", addressesPath, id))
}

func (c *Client) SetDefaultAddress(ctx context.Context, id int) error {
	return c.put(ctx, fmt.Sprintf("%s/%d/set-default", addressesPath, id), nil, nil)
}

func (c *Client) CreateGuestAddress(ctx context.Context, req models.GuestAddressRequest) (*models.Address, error) {
	var address models.Address
	if err := c.post(ctx, addressesPath+"/GuestAddress", req, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// GetGuestAddress returns the device's guest address, or nil when none is set.
func (c *Client) GetGuestAddress(ctx context.Context) (*models.Address, error) {
	var resp models.PaginatedAddressResponse
	if err := c.get(ctx, addressesPath+"/GetGuestAddress", nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	address := resp.Data[0]
	return &address, nil
}
