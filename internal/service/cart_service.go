package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/coupon"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService. Mutations of one user's cart are
// serialised by locks; the version check in CartRepository.Save covers
// writers in other processes.
type cartService struct {
	cartRepo repository.CartRepository
	db       repository.DBTX
	catalog  ProductCatalog
	coupons  coupon.Registry
	locks    *KeyedMutex
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	db repository.DBTX,
	catalog ProductCatalog,
	coupons coupon.Registry,
	locks *KeyedMutex,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		db:       db,
		catalog:  catalog,
		coupons:  coupons,
		locks:    locks,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) GetCart(ctx context.Context, caller model.Identity) (*model.CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, caller.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", caller.UserID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.view(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, caller model.Identity, req *model.AddItemRequest) (*model.CartView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	attrs := req.Attributes
	if attrs == nil {
		attrs = []model.Attribute{}
	}

	return s.mutate(ctx, caller, true, func(cart *model.Cart) error {
		if i := cart.FindLine(product.ID, attrs); i >= 0 {
			if cart.Items[i].Quantity > model.MaxLineQuantity-req.Quantity {
				return model.ErrQuantityLimit
			}
			cart.Items[i].Quantity += req.Quantity
			return nil
		}
		cart.Items = append(cart.Items, model.CartItem{
			ID:            uuid.New(),
			ProductID:     product.ID,
			Quantity:      req.Quantity,
			PriceSnapshot: product.EffectivePrice(),
			Attributes:    attrs,
			AddedAt:       time.Now().UTC(),
		})
		return nil
	})
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, caller model.Identity, itemID uuid.UUID, req *model.UpdateItemRequest) (*model.CartView, error) {
	if req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	return s.mutate(ctx, caller, false, func(cart *model.Cart) error {
		i := cart.FindItem(itemID)
		if i < 0 {
			return model.ErrItemNotFound
		}
		cart.Items[i].Quantity = req.Quantity
		return nil
	})
}

func (s *cartService) RemoveItem(ctx context.Context, caller model.Identity, itemID uuid.UUID) (*model.CartView, error) {
	return s.mutate(ctx, caller, false, func(cart *model.Cart) error {
		i := cart.FindItem(itemID)
		if i < 0 {
			return model.ErrItemNotFound
		}
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return nil
	})
}

func (s *cartService) ClearCart(ctx context.Context, caller model.Identity) (*model.CartView, error) {
	return s.mutate(ctx, caller, false, func(cart *model.Cart) error {
		resetCart(cart)
		return nil
	})
}

func (s *cartService) ApplyCoupon(ctx context.Context, caller model.Identity, req *model.ApplyCouponRequest) (*model.CartView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.CouponCode)
	if code != "" {
		if err := s.coupons.Validate(ctx, code); err != nil {
			s.logger.Warn().Err(err).Str("coupon_code", code).Msg("coupon rejected")
			return nil, err
		}
	}

	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}

	return s.mutate(ctx, caller, false, func(cart *model.Cart) error {
		cart.Coupon = model.Coupon{Code: code, Discount: discount}
		return nil
	})
}

func (s *cartService) UpdateShipping(ctx context.Context, caller model.Identity, req *model.UpdateShippingRequest) (*model.CartView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	cost := decimal.Zero
	if req.Cost != nil {
		cost = *req.Cost
	}

	return s.mutate(ctx, caller, false, func(cart *model.Cart) error {
		cart.ShippingMethod = strings.TrimSpace(req.Method)
		cart.ShippingCost = cost
		return nil
	})
}

// mutate applies one change to the caller's cart under the per-user lock and
// persists it. With create set, a missing cart is created first; otherwise a
// missing cart is model.ErrCartNotFound. Frozen carts are never changed.
func (s *cartService) mutate(ctx context.Context, caller model.Identity, create bool, apply func(*model.Cart) error) (*model.CartView, error) {
	unlock := s.locks.Lock(caller.UserID)
	defer unlock()

	var (
		cart *model.Cart
		err  error
	)
	if create {
		cart, err = s.cartRepo.GetOrCreate(ctx, caller.UserID)
	} else {
		cart, err = s.cartRepo.GetByUserID(ctx, caller.UserID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", caller.UserID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}
	if cart.IsFrozen {
		return nil, model.ErrCartFrozen
	}

	if err := apply(cart); err != nil {
		return nil, err
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.cartRepo.Save(ctx, s.db, cart); err != nil {
		s.logger.Warn().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to save cart")
		return nil, err
	}

	s.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Int("lines", len(cart.Items)).
		Str("total", model.ComputeTotal(cart).String()).
		Msg("cart updated")

	return s.view(ctx, cart)
}

func (s *cartService) view(ctx context.Context, cart *model.Cart) (*model.CartView, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to populate cart: %w", err)
	}
	return model.NewCartView(cart, products), nil
}

// resetCart empties items and restores coupon and shipping defaults.
func resetCart(cart *model.Cart) {
	cart.Items = []model.CartItem{}
	cart.Coupon = model.Coupon{Discount: decimal.Zero}
	cart.ShippingMethod = ""
	cart.ShippingCost = decimal.Zero
}
