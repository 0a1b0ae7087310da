package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	checkoutRepo repository.CheckoutRepository
	cartRepo     repository.CartRepository
	db           repository.DBTX
	gateway      payment.Gateway
	locks        *KeyedMutex
	logger       zerolog.Logger
}

// NewCheckoutService creates a new checkout service. locks must be the same
// KeyedMutex the cart service uses.
func NewCheckoutService(
	checkoutRepo repository.CheckoutRepository,
	cartRepo repository.CartRepository,
	db repository.DBTX,
	gateway payment.Gateway,
	locks *KeyedMutex,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		checkoutRepo: checkoutRepo,
		cartRepo:     cartRepo,
		db:           db,
		gateway:      gateway,
		locks:        locks,
		logger:       logger.With().Str("service", "checkout").Logger(),
	}
}

func (s *checkoutService) InitiateCheckout(ctx context.Context, caller model.Identity, req *model.InitiateCheckoutRequest) (*model.Checkout, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(caller.UserID)
	defer unlock()

	var (
		cart *model.Cart
		err  error
	)
	if req.CartID == uuid.Nil {
		cart, err = s.cartRepo.GetByUserID(ctx, caller.UserID)
	} else {
		cart, err = s.cartRepo.GetByID(ctx, s.db, req.CartID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", caller.UserID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || cart.UserID != caller.UserID {
		return nil, model.ErrCartNotFound
	}
	if cart.IsFrozen {
		return nil, model.ErrCartFrozen
	}
	if len(cart.Items) == 0 {
		return nil, model.ErrEmptyCart
	}
	// Payment needs a positive amount, so a zero total could never settle.
	total := model.ComputeTotal(cart)
	if !total.IsPositive() {
		return nil, model.ErrNonPositiveTotal
	}

	tx, err := s.checkoutRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to initiate checkout: %w", err)
	}
	defer s.rollback(ctx, tx)

	now := time.Now().UTC()
	checkout := &model.Checkout{
		ID:              uuid.New(),
		UserID:          caller.UserID,
		CartID:          cart.ID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentPending,
		TotalAmount:     total,
		Items:           append([]model.CartItem(nil), cart.Items...),
		CouponCode:      cart.Coupon.Code,
		ShippingMethod:  cart.ShippingMethod,
		ShippingCost:    cart.ShippingCost,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	cart.IsFrozen = true
	cart.UpdatedAt = now
	if err := s.cartRepo.Save(ctx, tx, cart); err != nil {
		return nil, err
	}

	if err := s.checkoutRepo.Create(ctx, tx, checkout); err != nil {
		s.logger.Error().Err(err).Str("checkout_id", checkout.ID.String()).Msg("failed to create checkout")
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("checkout_id", checkout.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to initiate checkout: %w", err)
	}

	s.logger.Info().
		Str("checkout_id", checkout.ID.String()).
		Str("cart_id", cart.ID.String()).
		Str("total_amount", checkout.TotalAmount.String()).
		Msg("checkout initiated")

	return checkout, nil
}

func (s *checkoutService) ProcessPayment(ctx context.Context, caller model.Identity, checkoutID uuid.UUID, req *model.ProcessPaymentRequest) (*model.Checkout, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(caller.UserID)
	defer unlock()

	tx, err := s.checkoutRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}
	defer s.rollback(ctx, tx)

	checkout, err := s.checkoutRepo.GetForUpdate(ctx, tx, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout: %w", err)
	}
	if checkout == nil || checkout.UserID != caller.UserID {
		return nil, model.ErrCheckoutNotFound
	}
	if checkout.PaymentStatus.Terminal() {
		return nil, model.ErrInvalidState
	}
	if !req.Amount.Equal(checkout.TotalAmount) {
		return nil, model.ErrAmountMismatch
	}

	approved, err := s.gateway.Attempt(ctx, req.Token, req.Amount)
	if err != nil {
		// The outcome is unknown, so the checkout stays pending.
		s.logger.Error().Err(err).Str("checkout_id", checkoutID.String()).Msg("payment gateway error")
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	status := model.PaymentFailed
	if approved {
		status = model.PaymentCompleted
	}
	if err := s.checkoutRepo.SetStatus(ctx, tx, checkout, status); err != nil {
		return nil, err
	}

	if err := s.releaseCart(ctx, tx, checkout.CartID, approved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("checkout_id", checkoutID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	s.logger.Info().
		Str("checkout_id", checkoutID.String()).
		Str("payment_status", string(status)).
		Msg("payment processed")

	if !approved {
		return checkout, model.ErrPaymentDeclined
	}
	return checkout, nil
}

// releaseCart unfreezes the source cart. A paid cart is also emptied; a
// declined one keeps its items so the shopper can retry.
func (s *checkoutService) releaseCart(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, paid bool) error {
	cart, err := s.cartRepo.GetByID(ctx, tx, cartID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		s.logger.Warn().Str("cart_id", cartID.String()).Msg("source cart no longer exists")
		return nil
	}

	if paid {
		resetCart(cart)
	}
	cart.IsFrozen = false
	cart.UpdatedAt = time.Now().UTC()

	return s.cartRepo.Save(ctx, tx, cart)
}

func (s *checkoutService) GetCheckout(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Checkout, error) {
	checkout, err := s.checkoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout: %w", err)
	}
	if checkout == nil || checkout.UserID != caller.UserID {
		return nil, model.ErrCheckoutNotFound
	}
	return checkout, nil
}

func (s *checkoutService) ListCheckouts(ctx context.Context, caller model.Identity) ([]model.Checkout, error) {
	checkouts, err := s.checkoutRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkouts: %w", err)
	}
	return checkouts, nil
}

// rollback is deferred after BeginTx; after a commit it is a no-op.
func (s *checkoutService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}
