package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles requests against the caller's cart.
type CartHandler struct {
	responder
	service service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(svc service.CartService, opts Options, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		responder: responder{opts: opts, logger: logger.With().Str("handler", "cart").Logger()},
		service:   svc,
	}
}

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.service.GetCart(r.Context(), caller))
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req model.AddItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.AddItem(r.Context(), caller, &req))
}

// UpdateItem handles PUT /cart/items/{itemId}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemId")
	if !ok {
		return
	}
	var req model.UpdateItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.UpdateItemQuantity(r.Context(), caller, itemID, &req))
}

// RemoveItem handles DELETE /cart/items/{itemId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemId")
	if !ok {
		return
	}
	h.respond(w, r)(h.service.RemoveItem(r.Context(), caller, itemID))
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.service.ClearCart(r.Context(), caller))
}

// ApplyCoupon handles POST /cart/coupon.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req model.ApplyCouponRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.ApplyCoupon(r.Context(), caller, &req))
}

// UpdateShipping handles PUT /cart/shipping.
func (h *CartHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req model.UpdateShippingRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.UpdateShipping(r.Context(), caller, &req))
}

// respond writes the cart returned by a service call, or its error.
func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request) func(*model.CartView, error) {
	return func(cart *model.CartView, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}
