package models

// SubCategory is one entry of a category's ordered sub-category list.
type SubCategory struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Category represents a top-level catalog category.
type Category struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Image         string        `json:"image,omitempty"`
	SubCategories []SubCategory `json:"subCategories"`
}

// Pack is a purchasable product variant in a given unit of measure. Its ID
// is the packaging id the bag is keyed by.
type Pack struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description,omitempty"`
	Image              string  `json:"image,omitempty"`
	UnitOfMeasure      string  `json:"unitOfMeasure"`
	Price              float64 `json:"price"`
	DiscountedPrice    float64 `json:"discountedPrice"`
	DiscountPercentage float64 `json:"discountPercentage"`
	StockQty           int     `json:"stockQty"`
	StepQty            int     `json:"stepQty"`
}

// EffectivePrice returns the price a customer pays. A discounted price above
// the base price, or an unset one, falls back to the base price.
func (p *Pack) EffectivePrice() float64 {
	if p.DiscountedPrice > 0 && p.DiscountedPrice <= p.Price {
		return p.DiscountedPrice
	}
	return p.Price
}

func (p *Pack) HasDiscount() bool {
	return p.EffectivePrice() < p.Price
}

func (p *Pack) IsPurchasable() bool {
	return p.StockQty > 0
}

func (p *Pack) IsLowStock(threshold int) bool {
	return p.StockQty <= threshold && p.StockQty > 0
}

// MinQuantity is the smallest step a quantity may change by.
func (p *Pack) MinQuantity() int {
	if p.StepQty < 1 {
		return 1
	}
	return p.StepQty
}

type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type BrowseProductsResponse struct {
	Products   []Pack `json:"products"`
	TotalCount int    `json:"totalCount"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BrowseQuery selects one page of a category listing. SubCategoryID 0 means
// the whole category.
type BrowseQuery struct {
	CategoryID    int `form:"-"`
	SubCategoryID int `form:"subCategoryId"`
	Page          int `form:"page"`
	PageSize      int `form:"pageSize"`
}

func (q *BrowseQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		q.PageSize = DefaultPageSize
	}
}
