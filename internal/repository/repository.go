package repository

import (
	"context"
	"errors"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Lookups return (nil, nil) when the row does not exist; services decide what that means.

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrEmailExists on a duplicate email.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns one page of users and the total count.
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	// Create inserts a category. Returns model.ErrCategoryNameExists on a duplicate name or slug.
	Create(ctx context.Context, category *model.Category) error

	// GetByID returns the category whether or not it is soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)

	// List returns every category that is not soft-deleted.
	List(ctx context.Context) ([]model.Category, error)

	Update(ctx context.Context, category *model.Category) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Delete removes the row. Returns false when nothing was deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// CountActive counts how many of ids refer to non-deleted categories.
	CountActive(ctx context.Context, ids []uuid.UUID) (int, error)
}

// SubCategoryRepository defines data access for sub-categories.
type SubCategoryRepository interface {
	Create(ctx context.Context, sub *model.SubCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SubCategory, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.SubCategory, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// CountActive counts how many of ids are non-deleted and have a non-deleted parent.
	CountActive(ctx context.Context, ids []uuid.UUID) (int, error)
}

// ProductRepository defines data access for products.
type ProductRepository interface {
	// Create inserts a product. Returns model.ErrSKUExists on a duplicate SKU.
	Create(ctx context.Context, product *model.Product) error

	// GetByID returns the product whether or not it is soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs returns the products that exist among ids, including soft-deleted ones.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	Update(ctx context.Context, product *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns one page of active, non-deleted products matching filter and the total count.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)

	// Search ranks active, non-deleted products by full-text relevance to filter.Search.
	Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)

	// Autocomplete returns products whose name starts with prefix, case-insensitively.
	Autocomplete(ctx context.Context, prefix string, limit int) ([]model.ProductSuggestion, error)
}

// CartRepository defines data access for cart documents.
type CartRepository interface {
	// GetOrCreate returns the user's cart, inserting an empty one when absent.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*model.Cart, error)

	// Save writes the cart if its stored version still equals cart.Version, then bumps the version.
	// Returns model.ErrCartConflict when another writer got there first.
	Save(ctx context.Context, db DBTX, cart *model.Cart) error
}

// CheckoutRepository defines data access for checkouts.
type CheckoutRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a checkout within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, checkout *model.Checkout) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Checkout, error)

	// GetForUpdate reads the checkout and locks its row until tx ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Checkout, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Checkout, error)

	// SetStatus moves a pending checkout to status. Returns model.ErrInvalidState if it is not pending.
	SetStatus(ctx context.Context, tx pgx.Tx, checkout *model.Checkout, status model.PaymentStatus) error
}

const uniqueViolation = "23505"

// uniqueConstraint returns the violated constraint name when err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func nonNilUUIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
