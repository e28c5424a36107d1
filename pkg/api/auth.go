package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a2b-grocery/storefront/pkg/models"
)

func (c *Client) CheckCustomerExist(ctx context.Context, phone string, countryCode int) (*models.CheckCustomerExistResponse, error) {
	query := url.Values{}
	query.Set("phoneNumber", phone)
	query.Set("countryCode", strconv.Itoa(countryCode))

	var resp models.CheckCustomerExistResponse
	if err := c.get(ctx, "/customer/api/Accounts/CheckCustomerExist", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.post(ctx, "/customer/api/Accounts/Login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
