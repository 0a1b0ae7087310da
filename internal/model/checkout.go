package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the shopper intends to pay.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentStripe     PaymentMethod = "stripe"
	PaymentCOD        PaymentMethod = "cod"
)

// PaymentStatus is the state of a checkout.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// ShippingAddress is where the order is delivered.
type ShippingAddress struct {
	Street  string `json:"street" validate:"required,min=3"`
	City    string `json:"city" validate:"required,min=2"`
	State   string `json:"state" validate:"required,min=2"`
	ZipCode string `json:"zipCode" validate:"required,min=5"`
	Country string `json:"country" validate:"required,min=2"`
}

// Checkout records one attempt to pay for a cart.
type Checkout struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	CartID          uuid.UUID       `json:"cartId" db:"cart_id"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Items           []CartItem      `json:"items" db:"items"`
	CouponCode      string          `json:"couponCode,omitempty" db:"coupon_code"`
	ShippingMethod  string          `json:"shippingMethod,omitempty" db:"shipping_method"`
	ShippingCost    decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// CheckoutView is the checkout as returned over HTTP.
type CheckoutView struct {
	ID              uuid.UUID       `json:"id"`
	CartID          uuid.UUID       `json:"cartId"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Items           []CartItem      `json:"items"`
	CouponCode      string          `json:"couponCode,omitempty"`
	ShippingMethod  string          `json:"shippingMethod,omitempty"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// View converts a checkout to its response shape.
func (c *Checkout) View() *CheckoutView {
	return &CheckoutView{
		ID:              c.ID,
		CartID:          c.CartID,
		ShippingAddress: c.ShippingAddress,
		PaymentMethod:   c.PaymentMethod,
		PaymentStatus:   c.PaymentStatus,
		TotalAmount:     c.TotalAmount,
		Items:           c.Items,
		CouponCode:      c.CouponCode,
		ShippingMethod:  c.ShippingMethod,
		ShippingCost:    c.ShippingCost,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// InitiateCheckoutRequest is the payload for POST /checkout. A zero CartID means the caller's own cart.
type InitiateCheckoutRequest struct {
	CartID          uuid.UUID       `json:"cartId"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" validate:"required,oneof=credit_card paypal stripe cod"`
}

// ProcessPaymentRequest is the payload for POST /checkout/{id}/payment.
type ProcessPaymentRequest struct {
	Token  string          `json:"token" validate:"required,min=10"`
	Amount decimal.Decimal `json:"amount" validate:"decimal_gt0"`
}
