package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Attribute is a (name, value) pair that distinguishes variants of one product, e.g. size=M.
type Attribute struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// CartItem is one line of a cart.
type CartItem struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"productId"`
	Quantity      int             `json:"quantity"`
	PriceSnapshot decimal.Decimal `json:"priceSnapshot"`
	Attributes    []Attribute     `json:"attributes"`
	AddedAt       time.Time       `json:"addedAt"`
}

// Coupon is the discount applied to a cart. The code is opaque unless the coupon registry is enabled.
type Coupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// Cart is the per-user shopping cart document. Version increases on every persisted change.
type Cart struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"userId" db:"user_id"`
	Items          []CartItem      `json:"items" db:"items"`
	Coupon         Coupon          `json:"coupon" db:"coupon"`
	ShippingMethod string          `json:"shippingMethod" db:"shipping_method"`
	ShippingCost   decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	IsFrozen       bool            `json:"isFrozen" db:"is_frozen"`
	Version        int64           `json:"version" db:"version"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// NewCart returns an empty cart owned by userID.
func NewCart(userID uuid.UUID) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:           uuid.New(),
		UserID:       userID,
		Items:        []CartItem{},
		Coupon:       Coupon{Discount: decimal.Zero},
		ShippingCost: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ComputeSubtotal sums priceSnapshot × quantity over every line.
func ComputeSubtotal(items []CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.PriceSnapshot.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// ComputeTotal is subtotal − coupon discount + shipping cost. The result is not clamped at zero.
func ComputeTotal(c *Cart) decimal.Decimal {
	return ComputeSubtotal(c.Items).Sub(c.Coupon.Discount).Add(c.ShippingCost)
}

// AttributesEqual reports whether a and b hold the same pairs in the same order.
// A nil list equals an empty one.
func AttributesEqual(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FindItem returns the index of the line with the given id, or -1.
func (c *Cart) FindItem(itemID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// FindLine returns the index of the line for productID with matching attributes, or -1.
func (c *Cart) FindLine(productID uuid.UUID, attrs []Attribute) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && AttributesEqual(c.Items[i].Attributes, attrs) {
			return i
		}
	}
	return -1
}

// ItemCount is the total number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// MaxLineQuantity caps the quantity of a single cart line, including merged adds.
const MaxLineQuantity = 10000

// AddItemRequest is the payload for POST /cart/items.
type AddItemRequest struct {
	ProductID  uuid.UUID   `json:"productId" validate:"required"`
	Quantity   int         `json:"quantity" validate:"required,min=1,max=10000"`
	Attributes []Attribute `json:"attributes" validate:"omitempty,dive"`
}

// UpdateItemRequest is the payload for PUT /cart/items/{itemId}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=10000"`
}

// ApplyCouponRequest replaces the cart coupon wholesale.
type ApplyCouponRequest struct {
	CouponCode string           `json:"couponCode" validate:"max=64"`
	Discount   *decimal.Decimal `json:"discount" validate:"omitempty,decimal_gte0"`
}

// UpdateShippingRequest replaces the cart shipping selection wholesale.
type UpdateShippingRequest struct {
	Method string           `json:"method" validate:"max=64"`
	Cost   *decimal.Decimal `json:"cost" validate:"omitempty,decimal_gte0"`
}

// ProductSummary is the product data shown alongside a cart line.
type ProductSummary struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	SalePrice     *decimal.Decimal `json:"salePrice,omitempty"`
	FeaturedImage string           `json:"featuredImage,omitempty"`
	StockStatus   StockStatus      `json:"stockStatus"`
}

// CartItemView is a cart line with its product populated. Product is nil when the product is gone.
type CartItemView struct {
	CartItem
	Product   *ProductSummary `json:"product"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartView is the cart as returned to the owner, with derived totals.
type CartView struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Items          []CartItemView  `json:"items"`
	Coupon         Coupon          `json:"coupon"`
	ShippingMethod string          `json:"shippingMethod"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	IsFrozen       bool            `json:"isFrozen"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// NewCartView derives totals and attaches product summaries keyed by product id.
func NewCartView(c *Cart, products map[uuid.UUID]*Product) *CartView {
	items := make([]CartItemView, 0, len(c.Items))
	for _, item := range c.Items {
		view := CartItemView{
			CartItem:  item,
			LineTotal: item.PriceSnapshot.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if p, ok := products[item.ProductID]; ok {
			view.Product = &ProductSummary{
				ID:            p.ID,
				Name:          p.Name,
				Price:         p.Price,
				SalePrice:     p.SalePrice,
				FeaturedImage: p.FeaturedImage(),
				StockStatus:   p.StockStatus,
			}
		}
		items = append(items, view)
	}

	return &CartView{
		ID:             c.ID,
		UserID:         c.UserID,
		Items:          items,
		Coupon:         c.Coupon,
		ShippingMethod: c.ShippingMethod,
		ShippingCost:   c.ShippingCost,
		IsFrozen:       c.IsFrozen,
		Subtotal:       ComputeSubtotal(c.Items),
		Total:          ComputeTotal(c),
		UpdatedAt:      c.UpdatedAt,
	}
}
