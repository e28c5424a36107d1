package models

// Product is the snapshot a local cart line and a simulated order keep.
type Product struct {
	ID          string  `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name" binding:"required"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64 `json:"price" bson:"price" binding:"gte=0"`
	Image       string  `json:"image,omitempty" bson:"image,omitempty"`
	Category    string  `json:"category,omitempty" bson:"category,omitempty"`
	Unit        string  `json:"unit,omitempty" bson:"unit,omitempty"`
	Stock       int     `json:"stock" bson:"stock"`
}

type CartItem struct {
	Product  Product `json:"product" bson:"product"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

func (ci *CartItem) Subtotal() float64 {
	return ci.Product.Price * float64(ci.Quantity)
}

type AddToCartRequest struct {
	Product  Product `json:"product" binding:"required"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}
