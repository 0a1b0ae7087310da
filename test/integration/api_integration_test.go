package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123"
)

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()
	pool := testDB.Pool

	images, err := storage.New(ctx, config.StorageConfig{Backend: "none"}, logger)
	require.NoError(t, err)
	gateway, err := payment.New(config.PaymentConfig{Gateway: "sandbox", DeclinePrefix: "decline_"}, logger)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	subCategoryRepo := repository.NewSubCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	checkoutRepo := repository.NewCheckoutRepository(pool, logger)

	tokens := auth.NewTokenManager("integration-secret", time.Hour)
	locks := service.NewKeyedMutex()

	catalog := service.NewCatalogService(productRepo, categoryRepo, subCategoryRepo, images, logger)
	opts := handler.Options{MaxUploadBytes: 10 << 20}

	return router.New(router.Handlers{
		Health:   handler.NewHealthHandler(pool, logger),
		User:     handler.NewUserHandler(service.NewUserService(userRepo, tokens, logger), opts, logger),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, subCategoryRepo, images, logger), opts, logger),
		Product:  handler.NewProductHandler(catalog, opts, logger),
		Cart:     handler.NewCartHandler(service.NewCartService(cartRepo, pool, catalog, coupon.NewOpenRegistry(), locks, logger), opts, logger),
		Checkout: handler.NewCheckoutHandler(service.NewCheckoutService(checkoutRepo, cartRepo, pool, gateway, locks, logger), opts, logger),
	}, router.Options{
		CORSAllowedOrigin: "*",
		Resolver:          tokens,
		Users:             userRepo,
	}, logger)
}

// seedAdmin inserts an admin directly; the API only lets admins create admins.
func seedAdmin(t *testing.T, testDB *TestDB) {
	t.Helper()

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)

	now := time.Now().UTC()
	err = repository.NewUserRepository(testDB.Pool, zerolog.Nop()).Create(context.Background(), &model.User{
		ID: uuid.New(), FirstName: "Admin", Email: adminEmail, PasswordHash: hash,
		Role: model.RoleAdmin, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
}

// call sends a JSON request and decodes the response into out when non-nil.
func call(t *testing.T, server http.Handler, method, path, token string, body, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func login(t *testing.T, server http.Handler, email, password string) string {
	t.Helper()

	var resp model.AuthResponse
	code := call(t, server, http.MethodPost, "/users/login", "", model.LoginRequest{Email: email, Password: password}, &resp)
	require.Equal(t, http.StatusOK, code)
	return resp.Token
}

func register(t *testing.T, server http.Handler, email string) string {
	t.Helper()

	var resp model.AuthResponse
	code := call(t, server, http.MethodPost, "/users/register", "", model.RegisterRequest{
		FirstName: "Shopper", LastName: "One", Email: email, Password: "Shopper1",
	}, &resp)
	require.Equal(t, http.StatusCreated, code)
	return resp.Token
}

// seedCatalog creates a category and two products through the admin API.
func seedCatalog(t *testing.T, server http.Handler, adminToken string) (uuid.UUID, uuid.UUID) {
	t.Helper()

	var category model.Category
	code := call(t, server, http.MethodPost, "/categories", adminToken,
		model.CategoryInput{Name: "Kitchen", Description: "Things for cooking"}, &category)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "kitchen", category.Slug)

	sale := decimal.NewFromInt(4)
	var mug, pan model.Product
	code = call(t, server, http.MethodPost, "/products", adminToken, model.ProductInput{
		Name: "Coffee Mug", Description: "A large ceramic mug", Price: decimal.NewFromInt(5), SalePrice: &sale,
		StockQuantity: 10, CategoryIDs: []uuid.UUID{category.ID},
	}, &mug)
	require.Equal(t, http.StatusCreated, code)

	code = call(t, server, http.MethodPost, "/products", adminToken, model.ProductInput{
		Name: "Frying Pan", Description: "A cast iron frying pan", Price: decimal.NewFromInt(10),
		StockQuantity: 3, CategoryIDs: []uuid.UUID{category.ID},
	}, &pan)
	require.Equal(t, http.StatusCreated, code)

	return mug.ID, pan.ID
}

func TestCheckoutFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("Approved payment empties the cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		seedAdmin(t, testDB)
		adminToken := login(t, server, adminEmail, adminPassword)
		mugID, panID := seedCatalog(t, server, adminToken)
		token := register(t, server, "buyer@example.com")

		var cart model.CartView
		require.Equal(t, http.StatusOK, call(t, server, http.MethodPost, "/cart/items", token,
			model.AddItemRequest{ProductID: mugID, Quantity: 2}, &cart))
		require.Equal(t, http.StatusOK, call(t, server, http.MethodPost, "/cart/items", token,
			model.AddItemRequest{ProductID: panID, Quantity: 1}, &cart))
		require.Equal(t, http.StatusOK, call(t, server, http.MethodPost, "/cart/items", token,
			model.AddItemRequest{ProductID: mugID, Quantity: 1}, &cart))
		require.Len(t, cart.Items, 2)

		discount, shipping := decimal.NewFromInt(2), decimal.RequireFromString("4.50")
		require.Equal(t, http.StatusOK, call(t, server, http.MethodPost, "/cart/coupon", token,
			model.ApplyCouponRequest{CouponCode: "WELCOME", Discount: &discount}, &cart))
		require.Equal(t, http.StatusOK, call(t, server, http.MethodPut, "/cart/shipping", token,
			model.UpdateShippingRequest{Method: "express", Cost: &shipping}, &cart))

		// 3 mugs at the 4.00 sale price, one pan at 10.00, minus 2 plus 4.50.
		expected := decimal.RequireFromString("24.50")
		assert.True(t, expected.Equal(cart.Total), "total %s", cart.Total)

		var checkout model.CheckoutView
		require.Equal(t, http.StatusCreated, call(t, server, http.MethodPost, "/checkout", token, model.InitiateCheckoutRequest{
			ShippingAddress: model.ShippingAddress{Street: "1 Main Street", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"},
			PaymentMethod:   model.PaymentCreditCard,
		}, &checkout))
		assert.Equal(t, model.PaymentPending, checkout.PaymentStatus)
		assert.True(t, expected.Equal(checkout.TotalAmount))

		var errResp model.ErrorResponse
		assert.Equal(t, http.StatusConflict, call(t, server, http.MethodPost, "/cart/items", token,
			model.AddItemRequest{ProductID: panID, Quantity: 1}, &errResp))
		assert.Equal(t, model.ErrCodeCartFrozen, errResp.Error)

		assert.Equal(t, http.StatusBadRequest, call(t, server, http.MethodPost, "/checkout/"+checkout.ID.String()+"/payment", token,
			model.ProcessPaymentRequest{Token: "tok_approve_123", Amount: decimal.NewFromInt(1)}, &errResp))
		assert.Equal(t, model.ErrCodeAmountMismatch, errResp.Error)

		var paid model.CheckoutView
		require.Equal(t, http.StatusOK, call(t, server, http.MethodPost, "/checkout/"+checkout.ID.String()+"/payment", token,
			model.ProcessPaymentRequest{Token: "tok_approve_123", Amount: expected}, &paid))
		assert.Equal(t, model.PaymentCompleted, paid.PaymentStatus)

		assert.Equal(t, http.StatusConflict, call(t, server, http.MethodPost, "/checkout/"+checkout.ID.String()+"/payment", token,
			model.ProcessPaymentRequest{Token: "tok_approve_123", Amount: expected}, &errResp))
		assert.Equal(t, model.ErrCodeInvalidState, errResp.Error)

		require.Equal(t, http.StatusOK, call(t, server, http.MethodGet, "/cart", token, nil, &cart))
		assert.Empty(t, cart.Items)
		assert.False(t, cart.IsFrozen)
		assert.True(t, cart.Total.IsZero())
	})

	t.Run("Declined payment keeps the cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		seedAdmin(t, testDB)
		adminToken := login(t, server, adminEmail, adminPassword)
		mugID, _ := seedCatalog(t, server, adminToken)
		token := register(t, server, "decline@example.com")

		var cart model.CartView
		require.Equal(t, http.StatusOK, call(t, server, http.MethodPost, "/cart/items", token,
			model.AddItemRequest{ProductID: mugID, Quantity: 1}, &cart))

		var checkout model.CheckoutView
		require.Equal(t, http.StatusCreated, call(t, server, http.MethodPost, "/checkout", token, model.InitiateCheckoutRequest{
			ShippingAddress: model.ShippingAddress{Street: "1 Main Street", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"},
			PaymentMethod:   model.PaymentPayPal,
		}, &checkout))

		var declined model.ErrorResponse
		require.Equal(t, http.StatusPaymentRequired, call(t, server, http.MethodPost, "/checkout/"+checkout.ID.String()+"/payment", token,
			model.ProcessPaymentRequest{Token: "decline_card_1", Amount: checkout.TotalAmount}, &declined))
		assert.Equal(t, model.ErrCodePaymentDeclined, declined.Error)
		require.NotNil(t, declined.Checkout)
		assert.Equal(t, model.PaymentFailed, declined.Checkout.PaymentStatus)

		require.Equal(t, http.StatusOK, call(t, server, http.MethodGet, "/cart", token, nil, &cart))
		assert.Len(t, cart.Items, 1)
		assert.False(t, cart.IsFrozen)

		var history []model.CheckoutView
		require.Equal(t, http.StatusOK, call(t, server, http.MethodGet, "/checkout", token, nil, &history))
		assert.Len(t, history, 1)
	})

	t.Run("Concurrent adds are all kept", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		seedAdmin(t, testDB)
		adminToken := login(t, server, adminEmail, adminPassword)
		mugID, _ := seedCatalog(t, server, adminToken)
		token := register(t, server, "busy@example.com")

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				body, _ := json.Marshal(model.AddItemRequest{ProductID: mugID, Quantity: 1})
				req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
				req.Header.Set("Authorization", "Bearer "+token)
				w := httptest.NewRecorder()
				server.ServeHTTP(w, req)
				assert.Equal(t, http.StatusOK, w.Code)
			}()
		}
		wg.Wait()

		var cart model.CartView
		require.Equal(t, http.StatusOK, call(t, server, http.MethodGet, "/cart", token, nil, &cart))
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 10, cart.Items[0].Quantity)
	})
}

func TestCatalogAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)
	CleanupDB(t, testDB.Pool)
	seedAdmin(t, testDB)
	adminToken := login(t, server, adminEmail, adminPassword)
	mugID, panID := seedCatalog(t, server, adminToken)

	t.Run("Listing and search", func(t *testing.T) {
		var page model.ProductPage
		require.Equal(t, http.StatusOK, call(t, server, http.MethodGet, "/products?sortBy=price&sortOrder=asc", "", nil, &page))
		require.Len(t, page.Data, 2)
		assert.Equal(t, mugID, page.Data[0].ID)
		assert.Equal(t, 2, page.Pagination.TotalItems)

		require.Equal(t, http.StatusOK, call(t, server, http.MethodGet, "/products/search?q=pan", "", nil, &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, panID, page.Data[0].ID)

		var suggestions []model.ProductSuggestion
		require.Equal(t, http.StatusOK, call(t, server, http.MethodGet, "/products/autocomplete?q=co", "", nil, &suggestions))
		require.Len(t, suggestions, 1)
		assert.Equal(t, "Coffee Mug", suggestions[0].Name)
	})

	t.Run("Soft-deleted product disappears", func(t *testing.T) {
		require.Equal(t, http.StatusOK, call(t, server, http.MethodDelete, "/products/"+panID.String()+"/soft", adminToken, nil, nil))

		var errResp model.ErrorResponse
		assert.Equal(t, http.StatusNotFound, call(t, server, http.MethodGet, "/products/"+panID.String(), "", nil, &errResp))
		assert.Equal(t, model.ErrCodeProductNotFound, errResp.Error)

		assert.Equal(t, http.StatusBadRequest, call(t, server, http.MethodDelete, "/products/"+panID.String()+"/soft", adminToken, nil, &errResp))
		assert.Equal(t, model.ErrCodeAlreadyDeleted, errResp.Error)
	})

	t.Run("Shoppers cannot administer", func(t *testing.T) {
		token := register(t, server, "curious@example.com")
		assert.Equal(t, http.StatusForbidden, call(t, server, http.MethodDelete, "/products/"+mugID.String(), token, nil, nil))
		assert.Equal(t, http.StatusUnauthorized, call(t, server, http.MethodGet, "/users/me", "", nil, nil))
	})
}
