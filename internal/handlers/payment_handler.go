package handlers

import (
	"net/http"

	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/services"
)

type PaymentHandler struct {
	validator *services.ValidationHelper
}

func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{validator: services.NewValidationHelper()}
}

// ListMerchants lists payable merchants and their cashback rates
// @Summary List merchants
// @Tags payments
// @Produce json
// @Success 200 {array} services.Merchant
// @Router /merchants [get]
func (h *PaymentHandler) ListMerchants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.Merchants())
}

// GetPayments returns the payment screen state
// @Summary Payment state
// @Tags payments
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.PaymentView
// @Router /sessions/{sessionID}/payments [get]
func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.Payments.View())
}

// PayMerchant pays a merchant from the wallet
// @Summary Pay merchant
// @Description Amount is in sen. Cashback is credited once the payment settles.
// @Tags payments
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{merchantId=string,amount=int64} true "Payment"
// @Success 202 {object} RouteResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/payments [post]
func (h *PaymentHandler) PayMerchant(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		MerchantID string `json:"merchantId" validate:"required"`
		Amount     int64  `json:"amount" validate:"required,gt=0"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	route, err := app.Payments.PayMerchant(req.MerchantID, models.Money(req.Amount))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app.Navigate(route)
	writeJSON(w, http.StatusAccepted, RouteResponse{Success: true, Route: app.Route(), Path: app.Route().Path(), Data: app.Payments.View()})
}
