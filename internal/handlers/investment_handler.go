package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/services"
)

type InvestmentHandler struct {
	validator *services.ValidationHelper
}

func NewInvestmentHandler() *InvestmentHandler {
	return &InvestmentHandler{validator: services.NewValidationHelper()}
}

// ListFunds lists the fund catalog
// @Summary List funds
// @Tags investment
// @Produce json
// @Success 200 {array} models.Fund
// @Router /funds [get]
func (h *InvestmentHandler) ListFunds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Funds())
}

// GetInvestment returns the investment flow state
// @Summary Investment state
// @Tags investment
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.InvestmentView
// @Router /sessions/{sessionID}/investment [get]
func (h *InvestmentHandler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.Investment.View())
}

// SelectFund chooses a fund and amount
// @Summary Select fund
// @Description Amount is in sen and must be at least the fund minimum
// @Tags investment
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{fundId=string,amount=int64} true "Selection"
// @Success 200 {object} RouteResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/investment/select [post]
func (h *InvestmentHandler) SelectFund(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		FundID string `json:"fundId" validate:"required"`
		Amount int64  `json:"amount" validate:"required,gt=0"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	route, err := app.Investment.SelectFund(req.FundID, models.Money(req.Amount))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app.Navigate(route)
	writeRoute(w, app.Route(), app.Investment.View())
}

// ProceedToFinal moves from review to final confirmation
// @Summary Proceed to final confirmation
// @Tags investment
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} RouteResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/investment/final [post]
func (h *InvestmentHandler) ProceedToFinal(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route, err := app.Investment.ProceedToFinal()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app.Navigate(route)
	writeRoute(w, app.Route(), app.Investment.View())
}

// SetCheckbox ticks or clears an acknowledgement
// @Summary Set acknowledgement
// @Tags investment
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param index path int true "Checkbox index (0-2)"
// @Param request body object{checked=bool} true "Checked"
// @Success 200 {object} services.InvestmentView
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/investment/checkboxes/{index} [put]
func (h *InvestmentHandler) SetCheckbox(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid checkbox index", http.StatusBadRequest, nil)
		return
	}

	var req struct {
		Checked bool `json:"checked"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	if err := app.Investment.SetCheckbox(index, req.Checked); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Investment.View())
}

// ToggleCheckbox flips an acknowledgement
// @Summary Toggle acknowledgement
// @Tags investment
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param index path int true "Checkbox index (0-2)"
// @Success 200 {object} services.InvestmentView
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/investment/checkboxes/{index}/toggle [post]
func (h *InvestmentHandler) ToggleCheckbox(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid checkbox index", http.StatusBadRequest, nil)
		return
	}
	if _, err := app.Investment.ToggleCheckbox(index); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Investment.View())
}

// Confirm starts processing the investment
// @Summary Confirm investment
// @Description Requires all three acknowledgements and enough balance. Processing cannot be cancelled.
// @Tags investment
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 202 {object} RouteResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/investment/confirm [post]
func (h *InvestmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route, err := app.Investment.Confirm()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app.Navigate(route)
	writeJSON(w, http.StatusAccepted, RouteResponse{Success: true, Route: app.Route(), Path: app.Route().Path(), Data: app.Investment.View()})
}

// GetReceipt returns the completed investment's receipt
// @Summary Investment receipt
// @Description Includes a base64 PNG QR code of the reference number
// @Tags investment
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.Receipt
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/investment/receipt [get]
func (h *InvestmentHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	receipt, err := app.Investment.Receipt()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// StartAnother begins a new investment after success
// @Summary Start another investment
// @Tags investment
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} RouteResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/investment/start-another [post]
func (h *InvestmentHandler) StartAnother(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route, err := app.Investment.StartAnother()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app.Navigate(route)
	writeRoute(w, app.Route(), app.Investment.View())
}
