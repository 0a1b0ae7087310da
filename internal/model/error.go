package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string        `json:"error"`
	Message       string        `json:"message"`
	CorrelationID string        `json:"correlationId,omitempty"`
	Details       []FieldError  `json:"details,omitempty"`
	Checkout      *CheckoutView `json:"checkout,omitempty"`
}

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorKind classifies domain errors; handlers map kinds to HTTP statuses.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindCartFrozen
	KindInvalidState
	KindPaymentDeclined
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeCartNotFound      = "CART_NOT_FOUND"
	ErrCodeItemNotFound      = "CART_ITEM_NOT_FOUND"
	ErrCodeCheckoutNotFound  = "CHECKOUT_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeQuantityLimit     = "QUANTITY_LIMIT_EXCEEDED"
	ErrCodeInvalidTotal      = "INVALID_TOTAL"
	ErrCodeInvalidSalePrice  = "INVALID_SALE_PRICE"
	ErrCodeInvalidCoupon     = "INVALID_COUPON"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeAmountMismatch    = "PAYMENT_AMOUNT_MISMATCH"
	ErrCodeAlreadyDeleted    = "ALREADY_DELETED"
	ErrCodeCartFrozen        = "CART_FROZEN"
	ErrCodeCartConflict      = "CART_CONFLICT"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeDuplicate         = "DUPLICATE"
	ErrCodePaymentDeclined   = "PAYMENT_DECLINED"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInvalidIdentifier = "INVALID_ID"
)

// DomainError is a business-rule failure that carries its own classification.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []FieldError
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with optional field details.
func NewValidationError(message string, details ...FieldError) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// AsDomainError extracts a DomainError from err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrProductNotFound     = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound    = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrSubCategoryNotFound = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Sub-category not found")
	ErrCartNotFound        = NewDomainError(KindNotFound, ErrCodeCartNotFound, "Cart not found")
	ErrItemNotFound        = NewDomainError(KindNotFound, ErrCodeItemNotFound, "Item not found in cart")
	ErrCheckoutNotFound    = NewDomainError(KindNotFound, ErrCodeCheckoutNotFound, "Checkout not found")
	ErrUserNotFound        = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")

	ErrInvalidQuantity  = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be at least 1")
	ErrQuantityLimit    = NewDomainError(KindValidation, ErrCodeQuantityLimit, "Quantity exceeds the per-item limit")
	ErrNonPositiveTotal = NewDomainError(KindValidation, ErrCodeInvalidTotal, "Cart total must be greater than zero to check out")
	ErrInvalidSalePrice = NewDomainError(KindValidation, ErrCodeInvalidSalePrice, "Sale price must be less than regular price")
	ErrInvalidCoupon    = NewDomainError(KindValidation, ErrCodeInvalidCoupon, "Coupon code is not recognised")
	ErrEmptyCart        = NewDomainError(KindValidation, ErrCodeEmptyCart, "Cannot check out an empty cart")
	ErrAmountMismatch   = NewDomainError(KindValidation, ErrCodeAmountMismatch, "Payment amount does not match checkout total")
	ErrAlreadyDeleted   = NewDomainError(KindValidation, ErrCodeAlreadyDeleted, "Record is already deleted")

	ErrCartFrozen      = NewDomainError(KindCartFrozen, ErrCodeCartFrozen, "Cart is frozen for checkout")
	ErrCartConflict    = NewDomainError(KindConflict, ErrCodeCartConflict, "Cart was modified concurrently")
	ErrInvalidState    = NewDomainError(KindInvalidState, ErrCodeInvalidState, "Checkout payment has already been processed")
	ErrPaymentDeclined = NewDomainError(KindPaymentDeclined, ErrCodePaymentDeclined, "Payment failed")

	ErrCategoryNameExists    = NewDomainError(KindConflict, ErrCodeDuplicate, "Category name already exists")
	ErrSubCategoryNameExists = NewDomainError(KindConflict, ErrCodeDuplicate, "Sub-category name already exists")
	ErrSKUExists             = NewDomainError(KindConflict, ErrCodeDuplicate, "Product SKU already exists")
	ErrEmailExists           = NewDomainError(KindConflict, ErrCodeDuplicate, "User already exists")

	ErrUnauthenticated    = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Authentication required")
	ErrInvalidCredentials = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Invalid credentials")
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "Access denied")
)
