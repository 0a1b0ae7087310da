package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCheckout(userID uuid.UUID, status model.PaymentStatus) *model.Checkout {
	now := time.Now().UTC()
	return &model.Checkout{
		ID:     uuid.New(),
		UserID: userID,
		CartID: uuid.New(),
		ShippingAddress: model.ShippingAddress{
			Street: "1 Main Street", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US",
		},
		PaymentMethod: model.PaymentCreditCard,
		PaymentStatus: status,
		TotalAmount:   decimal.NewFromInt(23),
		Items:         []model.CartItem{},
		ShippingCost:  decimal.NewFromInt(3),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCheckoutHandler_Initiate(t *testing.T) {
	caller := model.Identity{UserID: uuid.New(), Role: model.RoleUser}
	body := `{"shippingAddress":{"street":"1 Main Street","city":"Springfield","state":"IL","zipCode":"62701","country":"US"},"paymentMethod":"credit_card"}`

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Created", nil, http.StatusCreated},
		{"Empty cart", model.ErrEmptyCart, http.StatusBadRequest},
		{"Already frozen", model.ErrCartFrozen, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			call := svc.On("InitiateCheckout", mock.Anything, caller, mock.MatchedBy(func(req *model.InitiateCheckoutRequest) bool {
				return req.PaymentMethod == model.PaymentCreditCard && req.ShippingAddress.City == "Springfield" && req.CartID == uuid.Nil
			}))
			if tt.err != nil {
				call.Return(nil, tt.err)
			} else {
				call.Return(testCheckout(caller.UserID, model.PaymentPending), nil)
			}
			h := NewCheckoutHandler(svc, testOptions, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.Initiate(rec, asCaller(httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body)), caller))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.err == nil {
				var view model.CheckoutView
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
				assert.Equal(t, model.PaymentPending, view.PaymentStatus)
				assert.True(t, decimal.NewFromInt(23).Equal(view.TotalAmount))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCheckoutHandler_ProcessPayment(t *testing.T) {
	caller := model.Identity{UserID: uuid.New(), Role: model.RoleUser}
	body := `{"token":"tok_visa_0000","amount":"23"}`

	tests := []struct {
		name           string
		returned       *model.Checkout
		err            error
		expectedStatus int
		expectedCode   string
		expectCheckout bool
	}{
		{
			name:           "Approved",
			returned:       testCheckout(caller.UserID, model.PaymentCompleted),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Declined carries the failed checkout",
			returned:       testCheckout(caller.UserID, model.PaymentFailed),
			err:            model.ErrPaymentDeclined,
			expectedStatus: http.StatusPaymentRequired,
			expectedCode:   model.ErrCodePaymentDeclined,
			expectCheckout: true,
		},
		{
			name:           "Already processed",
			err:            model.ErrInvalidState,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInvalidState,
		},
		{
			name:           "Amount mismatch",
			err:            model.ErrAmountMismatch,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeAmountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			svc := new(MockCheckoutService)
			svc.On("ProcessPayment", mock.Anything, caller, id, mock.MatchedBy(func(req *model.ProcessPaymentRequest) bool {
				return req.Token == "tok_visa_0000" && req.Amount.Equal(decimal.NewFromInt(23))
			})).Return(tt.returned, tt.err)
			h := NewCheckoutHandler(svc, testOptions, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/checkout/"+id.String()+"/payment", strings.NewReader(body))
			req = asCaller(withParams(req, map[string]string{"id": id.String()}), caller)
			rec := httptest.NewRecorder()
			h.ProcessPayment(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedCode == "" {
				var view model.CheckoutView
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
				assert.Equal(t, model.PaymentCompleted, view.PaymentStatus)
			} else {
				var resp model.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
				if tt.expectCheckout {
					require.NotNil(t, resp.Checkout)
					assert.Equal(t, model.PaymentFailed, resp.Checkout.PaymentStatus)
				} else {
					assert.Nil(t, resp.Checkout)
				}
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCheckoutHandler_GetAndList(t *testing.T) {
	caller := model.Identity{UserID: uuid.New(), Role: model.RoleUser}
	first := testCheckout(caller.UserID, model.PaymentPending)
	second := testCheckout(caller.UserID, model.PaymentCompleted)

	svc := new(MockCheckoutService)
	svc.On("GetCheckout", mock.Anything, caller, first.ID).Return(first, nil)
	svc.On("GetCheckout", mock.Anything, caller, second.ID).Return(nil, model.ErrCheckoutNotFound)
	svc.On("ListCheckouts", mock.Anything, caller).Return([]model.Checkout{*first, *second}, nil)
	h := NewCheckoutHandler(svc, testOptions, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": first.ID.String()})
	h.Get(rec, asCaller(req, caller))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), first.ID.String())

	rec = httptest.NewRecorder()
	req = withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": second.ID.String()})
	h.Get(rec, asCaller(req, caller))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.List(rec, asCaller(httptest.NewRequest(http.MethodGet, "/checkout", nil), caller))
	assert.Equal(t, http.StatusOK, rec.Code)
	var views []model.CheckoutView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 2)

	svc.AssertExpectations(t)
}
