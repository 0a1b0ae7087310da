package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// UserService defines account and authentication operations.
type UserService interface {
	// Register creates a user account and returns a signed token.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// RegisterAdmin creates an admin account. Only admins may call it.
	RegisterAdmin(ctx context.Context, caller model.Identity, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login checks credentials and returns a signed token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Me returns the caller's own account.
	Me(ctx context.Context, caller model.Identity) (*model.User, error)

	// GetUser returns an account visible to the caller (self or admin).
	GetUser(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.User, error)

	// ListUsers returns one page of accounts. Only admins may call it.
	ListUsers(ctx context.Context, caller model.Identity, page, limit int) (*model.UserPage, error)
}

// ProductCatalog is the read-only catalogue boundary used by the cart.
type ProductCatalog interface {
	// GetProduct returns an active, non-deleted product or model.ErrProductNotFound.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetProducts returns the products that still exist among ids, keyed by id.
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error)
}

// CatalogService defines product browsing and administration.
type CatalogService interface {
	ProductCatalog

	ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)
	SearchProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)
	ListFeatured(ctx context.Context, page, limit int) (*model.ProductPage, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, page, limit int) (*model.ProductPage, error)

	// Autocomplete suggests product names starting with q. Queries under two characters return nothing.
	Autocomplete(ctx context.Context, q string, limit int) ([]model.ProductSuggestion, error)

	CreateProduct(ctx context.Context, in *model.ProductInput, images []model.Upload) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in *model.ProductUpdate, images []model.Upload) (*model.Product, error)
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CategoryService defines category and sub-category management.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	CreateCategory(ctx context.Context, in *model.CategoryInput, image *model.Upload) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in *model.CategoryUpdate, image *model.Upload) (*model.Category, error)
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateSubCategory(ctx context.Context, categoryID uuid.UUID, in *model.SubCategoryInput) (*model.SubCategory, error)
	ListSubCategories(ctx context.Context, categoryID uuid.UUID) ([]model.SubCategory, error)
	SoftDeleteSubCategory(ctx context.Context, id uuid.UUID) error
}

// CartService defines operations on the caller's cart. Every mutation
// returns the cart as it was persisted.
type CartService interface {
	// GetCart returns the caller's cart, creating an empty one on first access.
	GetCart(ctx context.Context, caller model.Identity) (*model.CartView, error)

	AddItem(ctx context.Context, caller model.Identity, req *model.AddItemRequest) (*model.CartView, error)
	UpdateItemQuantity(ctx context.Context, caller model.Identity, itemID uuid.UUID, req *model.UpdateItemRequest) (*model.CartView, error)
	RemoveItem(ctx context.Context, caller model.Identity, itemID uuid.UUID) (*model.CartView, error)
	ClearCart(ctx context.Context, caller model.Identity) (*model.CartView, error)

	// ApplyCoupon replaces the cart coupon wholesale.
	ApplyCoupon(ctx context.Context, caller model.Identity, req *model.ApplyCouponRequest) (*model.CartView, error)

	// UpdateShipping replaces the shipping selection wholesale.
	UpdateShipping(ctx context.Context, caller model.Identity, req *model.UpdateShippingRequest) (*model.CartView, error)
}

// CheckoutService defines the checkout and payment flow.
type CheckoutService interface {
	// InitiateCheckout freezes the cart and records a pending checkout atomically.
	InitiateCheckout(ctx context.Context, caller model.Identity, req *model.InitiateCheckoutRequest) (*model.Checkout, error)

	// ProcessPayment settles a pending checkout exactly once. A decline returns
	// the failed checkout together with model.ErrPaymentDeclined.
	ProcessPayment(ctx context.Context, caller model.Identity, checkoutID uuid.UUID, req *model.ProcessPaymentRequest) (*model.Checkout, error)

	GetCheckout(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Checkout, error)
	ListCheckouts(ctx context.Context, caller model.Identity) ([]model.Checkout, error)
}
