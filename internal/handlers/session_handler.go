package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ruralpay/investflow/internal/services"
)

type SessionHandler struct {
	registry  *services.Registry
	validator *services.ValidationHelper
}

func NewSessionHandler(registry *services.Registry) *SessionHandler {
	return &SessionHandler{
		registry:  registry,
		validator: services.NewValidationHelper(),
	}
}

// CreateSession starts a demo wallet session
// @Summary Create session
// @Description Start a session on the demo wallet (balance 150.00)
// @Tags session
// @Produce json
// @Success 201 {object} services.AppView
// @Failure 500 {object} services.ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	app, err := h.registry.Create(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Info().Str("session_id", app.ID).Msg("session created")
	writeJSON(w, http.StatusCreated, app.View())
}

// GetSession returns the session state
// @Summary Get session
// @Description Current screen, wallet state, exit modal and banner visibility
// @Tags session
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.AppView
// @Failure 404 {object} services.ErrorResponse
// @Router /sessions/{sessionID} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.View())
}

// DeleteSession tears a session down
// @Summary Delete session
// @Tags session
// @Param sessionID path string true "Session ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Router /sessions/{sessionID} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(chi.URLParam(r, "sessionID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate moves the session to a client path
// @Summary Navigate
// @Description Navigate to a path such as /invest-onboarding?step=3. Unknown onboarding steps resolve to step 1.
// @Tags session
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{path=string} true "Navigation request"
// @Success 200 {object} RouteResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/navigate [post]
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path" validate:"required"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	route, err := app.NavigatePath(req.Path)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	writeRoute(w, route, map[string]bool{"exitModalOpen": app.Gate.IsOpen()})
}

// Back handles the back control of the current screen
// @Summary Back
// @Description Leaving an unconfirmed investment opens the exit modal instead of navigating
// @Tags session
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} RouteResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/back [post]
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route, err := app.Back()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRoute(w, route, map[string]bool{"exitModalOpen": app.Gate.IsOpen()})
}

// Exit leaves for the dashboard
// @Summary Exit
// @Tags session
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} RouteResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/exit [post]
func (h *SessionHandler) Exit(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route, err := app.Exit()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRoute(w, route, map[string]bool{"exitModalOpen": app.Gate.IsOpen()})
}

// ExitModal resolves the exit confirmation modal
// @Summary Resolve exit modal
// @Description action is one of resume, learn-more, leave
// @Tags session
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param action path string true "resume | learn-more | leave"
// @Success 200 {object} RouteResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/exit-modal/{action} [post]
func (h *SessionHandler) ExitModal(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	switch chi.URLParam(r, "action") {
	case "resume":
		writeRoute(w, app.Resume(), nil)
	case "learn-more":
		writeRoute(w, app.LearnMore(), map[string]bool{"scrollToTop": true})
	case "leave":
		route, err := app.LeaveAnyway()
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeRoute(w, route, nil)
	default:
		services.SendErrorResponse(w, "Unknown exit modal action", http.StatusBadRequest, nil)
	}
}

// Invest follows an "invest" call to action
// @Summary Invest entry
// @Description Goes to onboarding until it is complete, otherwise to the invest landing page
// @Tags session
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} RouteResponse
// @Router /sessions/{sessionID}/invest [post]
func (h *SessionHandler) Invest(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route := app.InvestEntry()
	writeRoute(w, route, map[string]bool{"exitModalOpen": app.Gate.IsOpen()})
}

// StartInvesting is the invest landing page call to action
// @Summary Start investing
// @Tags session
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} RouteResponse
// @Router /sessions/{sessionID}/invest/start [post]
func (h *SessionHandler) StartInvesting(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route := app.StartInvesting()
	writeRoute(w, route, map[string]bool{"exitModalOpen": app.Gate.IsOpen()})
}

// Search runs a wallet search
// @Summary Search
// @Description Records the query; investment keywords surface the search card
// @Tags session
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{query=string} true "Search request"
// @Success 200 {object} RouteResponse
// @Router /sessions/{sessionID}/search [post]
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		Query string `json:"query" validate:"required"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	route := app.Search(req.Query)
	writeRoute(w, route, map[string]bool{
		"investmentIntent": services.MatchesInvestmentIntent(req.Query),
		"exitModalOpen":    app.Gate.IsOpen(),
	})
}
