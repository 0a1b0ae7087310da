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

const cartColumns = `id, user_id, items, coupon_code, coupon_discount, shipping_method, shipping_cost,
	is_frozen, version, created_at, updated_at`

// cartRepository stores each cart as one row whose line items live in a JSONB column.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func scanCart(row pgx.Row) (*model.Cart, error) {
	var c model.Cart
	err := row.Scan(
		&c.ID, &c.UserID, &c.Items, &c.Coupon.Code, &c.Coupon.Discount, &c.ShippingMethod, &c.ShippingCost,
		&c.IsFrozen, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return &c, nil
}

func (r *cartRepository) getOne(ctx context.Context, db DBTX, query string, arg any) (*model.Cart, error) {
	cart, err := scanCart(db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return cart, nil
}

// GetOrCreate inserts an empty cart unless the user already has one, then reads it back.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	fresh := model.NewCart(userID)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO carts (id, user_id, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`, fresh.ID, fresh.UserID, fresh.Items, fresh.CreatedAt, fresh.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart for user %s vanished after insert", userID)
	}
	return cart, nil
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	return r.getOne(ctx, r.pool, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, userID)
}

func (r *cartRepository) GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*model.Cart, error) {
	return r.getOne(ctx, db, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
}

// Save performs a compare-and-swap on the version column.
func (r *cartRepository) Save(ctx context.Context, db DBTX, cart *model.Cart) error {
	items := cart.Items
	if items == nil {
		items = []model.CartItem{}
	}
	now := time.Now().UTC()

	query := `
		UPDATE carts SET
			items = $3, coupon_code = $4, coupon_discount = $5, shipping_method = $6, shipping_cost = $7,
			is_frozen = $8, version = version + 1, updated_at = $9
		WHERE id = $1 AND version = $2
	`

	tag, err := db.Exec(ctx, query,
		cart.ID, cart.Version, items, cart.Coupon.Code, cart.Coupon.Discount, cart.ShippingMethod, cart.ShippingCost,
		cart.IsFrozen, now,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("cart_id", cart.ID.String()).
			Int64("version", cart.Version).
			Msg("cart version conflict")
		return model.ErrCartConflict
	}

	cart.Version++
	cart.UpdatedAt = now

	return nil
}
