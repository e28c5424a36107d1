package models

// Bag models mirror the server-authoritative bag. The server splits lines
// into express and tomorrow fulfillment groups.

type BagItem struct {
	PackID          int     `json:"packId"`
	PackName        string  `json:"packName"`
	Image           string  `json:"image,omitempty"`
	UnitOfMeasure   string  `json:"unitOfMeasure,omitempty"`
	Price           float64 `json:"price"`
	DiscountedPrice float64 `json:"discountedPrice"`
	BagQty          int     `json:"bagQty"`
	Comment         string  `json:"comment,omitempty"`
	LineTotal       float64 `json:"lineTotal"`
}

type Bag struct {
	ExpressBagItems  []BagItem `json:"expressBagItems"`
	TomorrowBagItems []BagItem `json:"tomorrowBagItems"`
	ExpressSubTotal  float64   `json:"expressSubTotal"`
	TomorrowSubTotal float64   `json:"tomorrowSubTotal"`
	BagSubTotal      float64   `json:"bagSubTotal"`
}

type MutateBagRequest struct {
	PackagingID int    `json:"packgingId"`
	Quantity    int    `json:"quantity"`
	Comment     string `json:"comment"`
}

// Find returns the line for packID from either group.
func (b *Bag) Find(packID int) (BagItem, bool) {
	if b == nil {
		return BagItem{}, false
	}
	for _, item := range b.ExpressBagItems {
		if item.PackID == packID {
			return item, true
		}
	}
	for _, item := range b.TomorrowBagItems {
		if item.PackID == packID {
			return item, true
		}
	}
	return BagItem{}, false
}

func (b *Bag) Quantity(packID int) int {
	item, _ := b.Find(packID)
	return item.BagQty
}

// Count sums quantities across both fulfillment groups.
func (b *Bag) Count() int {
	if b == nil {
		return 0
	}
	var count int
	for _, item := range b.ExpressBagItems {
		count += item.BagQty
	}
	for _, item := range b.TomorrowBagItems {
		count += item.BagQty
	}
	return count
}

func (b *Bag) Items() []BagItem {
	if b == nil {
		return nil
	}
	items := make([]BagItem, 0, len(b.ExpressBagItems)+len(b.TomorrowBagItems))
	items = append(items, b.ExpressBagItems...)
	return append(items, b.TomorrowBagItems...)
}

func (b *Bag) IsEmpty() bool {
	return b.Count() == 0
}

// Clone returns a deep copy safe to hand outside the owner's lock.
func (b *Bag) Clone() *Bag {
	if b == nil {
		return nil
	}
	c := *b
	c.ExpressBagItems = append([]BagItem(nil), b.ExpressBagItems...)
	c.TomorrowBagItems = append([]BagItem(nil), b.TomorrowBagItems...)
	return &c
}
