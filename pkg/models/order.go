package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderItem is a product snapshot plus the ordered quantity.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
	Unit      string  `json:"unit,omitempty" bson:"unit,omitempty"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
}

func (oi *OrderItem) Subtotal() float64 {
	return oi.Price * float64(oi.Quantity)
}

// Order is immutable after creation except for Status.
type Order struct {
	ID              string      `json:"id" bson:"id"`
	UserID          string      `json:"userId" bson:"user_id"`
	Items           []OrderItem `json:"items" bson:"items"`
	Subtotal        float64     `json:"subtotal" bson:"subtotal"`
	DeliveryFee     float64     `json:"deliveryFee" bson:"delivery_fee"`
	Total           float64     `json:"total" bson:"total"`
	Status          OrderStatus `json:"status" bson:"status"`
	DeliveryAddress string      `json:"deliveryAddress" bson:"delivery_address"`
	Phone           string      `json:"phone" bson:"phone"`
	Notes           string      `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time   `json:"createdAt" bson:"created_at"`
}

// CalculateTotals sums the lines and adds the fixed delivery fee.
func (o *Order) CalculateTotals(deliveryFee float64) {
	var subtotal float64
	for i := range o.Items {
		subtotal += o.Items[i].Subtotal()
	}
	o.Subtotal = subtotal
	o.DeliveryFee = deliveryFee
	o.Total = subtotal + deliveryFee
}

func (o *Order) GetItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// GenerateOrderNumber formats ORDER-<unix millis>-<suffix>. The random
// suffix keeps orders placed in the same millisecond apart.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORDER-%d-%s", now.UnixMilli(), suffix)
}

type CreateOrderRequest struct {
	Items           []OrderItem `json:"items"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Phone           string      `json:"phone"`
	Notes           string      `json:"notes,omitempty"`
}

type OrdersResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

type OrderQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}
