package handler

import (
	"context"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockUserService) RegisterAdmin(ctx context.Context, caller model.Identity, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockUserService) Me(ctx context.Context, caller model.Identity) (*model.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, caller model.Identity, page, limit int) (*model.UserPage, error) {
	args := m.Called(ctx, caller, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserPage), args.Error(1)
}

// MockCategoryService is a mock implementation of CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, in *model.CategoryInput, image *model.Upload) (*model.Category, error) {
	args := m.Called(ctx, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, in *model.CategoryUpdate, image *model.Upload) (*model.Category, error) {
	args := m.Called(ctx, id, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryService) CreateSubCategory(ctx context.Context, categoryID uuid.UUID, in *model.SubCategoryInput) (*model.SubCategory, error) {
	args := m.Called(ctx, categoryID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubCategory), args.Error(1)
}

func (m *MockCategoryService) ListSubCategories(ctx context.Context, categoryID uuid.UUID) ([]model.SubCategory, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SubCategory), args.Error(1)
}

func (m *MockCategoryService) SoftDeleteSubCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*model.Product), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockCatalogService) SearchProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockCatalogService) ListFeatured(ctx context.Context, page, limit int) (*model.ProductPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockCatalogService) ListByCategory(ctx context.Context, categoryID uuid.UUID, page, limit int) (*model.ProductPage, error) {
	args := m.Called(ctx, categoryID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockCatalogService) Autocomplete(ctx context.Context, q string, limit int) ([]model.ProductSuggestion, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductSuggestion), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, in *model.ProductInput, images []model.Upload) (*model.Product, error) {
	args := m.Called(ctx, in, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in *model.ProductUpdate, images []model.Upload) (*model.Product, error) {
	args := m.Called(ctx, id, in, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) view(args mock.Arguments) (*model.CartView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, caller model.Identity) (*model.CartView, error) {
	return m.view(m.Called(ctx, caller))
}

func (m *MockCartService) AddItem(ctx context.Context, caller model.Identity, req *model.AddItemRequest) (*model.CartView, error) {
	return m.view(m.Called(ctx, caller, req))
}

func (m *MockCartService) UpdateItemQuantity(ctx context.Context, caller model.Identity, itemID uuid.UUID, req *model.UpdateItemRequest) (*model.CartView, error) {
	return m.view(m.Called(ctx, caller, itemID, req))
}

func (m *MockCartService) RemoveItem(ctx context.Context, caller model.Identity, itemID uuid.UUID) (*model.CartView, error) {
	return m.view(m.Called(ctx, caller, itemID))
}

func (m *MockCartService) ClearCart(ctx context.Context, caller model.Identity) (*model.CartView, error) {
	return m.view(m.Called(ctx, caller))
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, caller model.Identity, req *model.ApplyCouponRequest) (*model.CartView, error) {
	return m.view(m.Called(ctx, caller, req))
}

func (m *MockCartService) UpdateShipping(ctx context.Context, caller model.Identity, req *model.UpdateShippingRequest) (*model.CartView, error) {
	return m.view(m.Called(ctx, caller, req))
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) InitiateCheckout(ctx context.Context, caller model.Identity, req *model.InitiateCheckoutRequest) (*model.Checkout, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkout), args.Error(1)
}

func (m *MockCheckoutService) ProcessPayment(ctx context.Context, caller model.Identity, checkoutID uuid.UUID, req *model.ProcessPaymentRequest) (*model.Checkout, error) {
	args := m.Called(ctx, caller, checkoutID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkout), args.Error(1)
}

func (m *MockCheckoutService) GetCheckout(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Checkout, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkout), args.Error(1)
}

func (m *MockCheckoutService) ListCheckouts(ctx context.Context, caller model.Identity) ([]model.Checkout, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Checkout), args.Error(1)
}

var testOptions = Options{MaxUploadBytes: 10 << 20}

// withParams attaches chi URL parameters to r.
func withParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asCaller attaches an authenticated identity to r.
func asCaller(r *http.Request, identity model.Identity) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), identity))
}
