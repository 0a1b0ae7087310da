package service

import (
	"context"
	"sync"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.User), args.Int(1), args.Error(2)
}

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) CountActive(ctx context.Context, ids []uuid.UUID) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

// MockSubCategoryRepository is a mock implementation of SubCategoryRepository.
type MockSubCategoryRepository struct {
	mock.Mock
}

func (m *MockSubCategoryRepository) Create(ctx context.Context, sub *model.SubCategory) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SubCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubCategory), args.Error(1)
}

func (m *MockSubCategoryRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.SubCategory, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SubCategory), args.Error(1)
}

func (m *MockSubCategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubCategoryRepository) CountActive(ctx context.Context, ids []uuid.UUID) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) Search(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) Autocomplete(ctx context.Context, prefix string, limit int) ([]model.ProductSuggestion, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductSuggestion), args.Error(1)
}

// MockCheckoutRepository is a mock implementation of CheckoutRepository.
type MockCheckoutRepository struct {
	mock.Mock
}

func (m *MockCheckoutRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCheckoutRepository) Create(ctx context.Context, tx pgx.Tx, c *model.Checkout) error {
	return m.Called(ctx, tx, c).Error(0)
}

func (m *MockCheckoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Checkout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Checkout, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Checkout, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) SetStatus(ctx context.Context, tx pgx.Tx, c *model.Checkout, status model.PaymentStatus) error {
	args := m.Called(ctx, tx, c, status)
	if args.Error(0) == nil {
		c.PaymentStatus = status
	}
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// MockCouponRegistry is a mock implementation of coupon.Registry.
type MockCouponRegistry struct {
	mock.Mock
}

func (m *MockCouponRegistry) Validate(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockCouponRegistry) Close() error {
	return m.Called().Error(0)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Attempt(ctx context.Context, token string, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, token, amount)
	return args.Bool(0), args.Error(1)
}

// memCartRepository keeps carts in memory and enforces the version check
// the way the Postgres repository does. Saves ignore db.
type memCartRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*model.Cart
}

func newMemCartRepository() *memCartRepository {
	return &memCartRepository{carts: make(map[uuid.UUID]*model.Cart)}
}

func cloneCart(c *model.Cart) *model.Cart {
	cp := *c
	cp.Items = make([]model.CartItem, len(c.Items))
	for i, item := range c.Items {
		item.Attributes = append([]model.Attribute{}, item.Attributes...)
		cp.Items[i] = item
	}
	return &cp
}

func (r *memCartRepository) put(cart *model.Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.ID] = cloneCart(cart)
}

func (r *memCartRepository) GetOrCreate(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.UserID == userID {
			return cloneCart(c), nil
		}
	}
	cart := model.NewCart(userID)
	r.carts[cart.ID] = cloneCart(cart)
	return cart, nil
}

func (r *memCartRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.UserID == userID {
			return cloneCart(c), nil
		}
	}
	return nil, nil
}

func (r *memCartRepository) GetByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[id]; ok {
		return cloneCart(c), nil
	}
	return nil, nil
}

func (r *memCartRepository) Save(_ context.Context, _ repository.DBTX, cart *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[cart.ID]
	if !ok || stored.Version != cart.Version {
		return model.ErrCartConflict
	}
	cart.Version++
	r.carts[cart.ID] = cloneCart(cart)
	return nil
}

// stubCatalog serves products from a map.
type stubCatalog struct {
	products map[uuid.UUID]*model.Product
}

func (c *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := c.products[id]
	if !ok || p.IsDeleted || !p.IsActive {
		return nil, model.ErrProductNotFound
	}
	return p, nil
}

func (c *stubCatalog) GetProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	out := make(map[uuid.UUID]*model.Product, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// MockImageStore is a mock implementation of storage.Store.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, file model.Upload) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}
