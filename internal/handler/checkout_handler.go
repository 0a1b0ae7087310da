package handler

import (
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout and payment requests.
type CheckoutHandler struct {
	responder
	service service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(svc service.CheckoutService, opts Options, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		responder: responder{opts: opts, logger: logger.With().Str("handler", "checkout").Logger()},
		service:   svc,
	}
}

// Initiate handles POST /checkout.
func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req model.InitiateCheckoutRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	checkout, err := h.service.InitiateCheckout(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkout.View())
}

// ProcessPayment handles POST /checkout/{id}/payment. A declined payment
// answers 402 and still carries the failed checkout.
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.ProcessPaymentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	checkout, err := h.service.ProcessPayment(r.Context(), caller, id, &req)
	if errors.Is(err, model.ErrPaymentDeclined) && checkout != nil {
		status, body := h.errorBody(r, err)
		body.Checkout = checkout.View()
		h.logger.Info().Str("checkout_id", checkout.ID.String()).Msg("payment declined")
		writeJSON(w, status, body)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout.View())
}

// Get handles GET /checkout/{id}.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	checkout, err := h.service.GetCheckout(r.Context(), caller, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout.View())
}

// List handles GET /checkout.
func (h *CheckoutHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	checkouts, err := h.service.ListCheckouts(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	views := make([]*model.CheckoutView, 0, len(checkouts))
	for i := range checkouts {
		views = append(views, checkouts[i].View())
	}
	writeJSON(w, http.StatusOK, views)
}
