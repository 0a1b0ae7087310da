package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const checkoutColumns = `id, user_id, cart_id, shipping_address, payment_method, payment_status, total_amount,
	items, coupon_code, shipping_method, shipping_cost, created_at, updated_at`

// checkoutRepository implements the CheckoutRepository interface using PostgreSQL.
type checkoutRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCheckoutRepository creates a new PostgreSQL-backed checkout repository.
func NewCheckoutRepository(pool *pgxpool.Pool, logger zerolog.Logger) CheckoutRepository {
	return &checkoutRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "checkout").Logger(),
	}
}

func scanCheckout(row pgx.Row) (*model.Checkout, error) {
	var c model.Checkout
	err := row.Scan(
		&c.ID, &c.UserID, &c.CartID, &c.ShippingAddress, &c.PaymentMethod, &c.PaymentStatus, &c.TotalAmount,
		&c.Items, &c.CouponCode, &c.ShippingMethod, &c.ShippingCost, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return &c, nil
}

// BeginTx starts a new database transaction.
func (r *checkoutRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new checkout within the provided transaction.
func (r *checkoutRepository) Create(ctx context.Context, tx pgx.Tx, c *model.Checkout) error {
	items := c.Items
	if items == nil {
		items = []model.CartItem{}
	}

	query := `
		INSERT INTO checkouts (` + checkoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := tx.Exec(ctx, query,
		c.ID, c.UserID, c.CartID, c.ShippingAddress, c.PaymentMethod, c.PaymentStatus, c.TotalAmount,
		items, c.CouponCode, c.ShippingMethod, c.ShippingCost, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("checkout_id", c.ID.String()).
			Msg("failed to create checkout")
		return fmt.Errorf("failed to create checkout: %w", err)
	}

	r.logger.Debug().
		Str("checkout_id", c.ID.String()).
		Msg("checkout created successfully")

	return nil
}

func (r *checkoutRepository) getOne(ctx context.Context, db DBTX, query string, id uuid.UUID) (*model.Checkout, error) {
	c, err := scanCheckout(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("checkout_id", id.String()).Msg("checkout not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("checkout_id", id.String()).Msg("failed to query checkout")
		return nil, fmt.Errorf("failed to query checkout: %w", err)
	}
	return c, nil
}

// GetByID retrieves a checkout by its ID.
func (r *checkoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Checkout, error) {
	return r.getOne(ctx, r.pool, `SELECT `+checkoutColumns+` FROM checkouts WHERE id = $1`, id)
}

// GetForUpdate reads the checkout with a row lock held until tx ends.
func (r *checkoutRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Checkout, error) {
	return r.getOne(ctx, tx, `SELECT `+checkoutColumns+` FROM checkouts WHERE id = $1 FOR UPDATE`, id)
}

// ListByUser returns the user's checkouts, newest first.
func (r *checkoutRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Checkout, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+checkoutColumns+` FROM checkouts WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query checkouts")
		return nil, fmt.Errorf("failed to query checkouts: %w", err)
	}
	defer rows.Close()

	checkouts := []model.Checkout{}
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkout: %w", err)
		}
		checkouts = append(checkouts, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkouts: %w", err)
	}

	return checkouts, nil
}

// SetStatus transitions a pending checkout exactly once.
func (r *checkoutRepository) SetStatus(ctx context.Context, tx pgx.Tx, c *model.Checkout, status model.PaymentStatus) error {
	now := time.Now().UTC()

	tag, err := tx.Exec(ctx, `
		UPDATE checkouts SET payment_status = $2, updated_at = $3
		WHERE id = $1 AND payment_status = 'pending'
	`, c.ID, status, now)
	if err != nil {
		r.logger.Error().Err(err).Str("checkout_id", c.ID.String()).Msg("failed to update checkout status")
		return fmt.Errorf("failed to update checkout status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrInvalidState
	}

	c.PaymentStatus = status
	c.UpdatedAt = now

	return nil
}
