package handlers

import (
	"net/http"

	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/services"
)

type OnboardingHandler struct {
	validator *services.ValidationHelper
}

func NewOnboardingHandler() *OnboardingHandler {
	return &OnboardingHandler{validator: services.NewValidationHelper()}
}

// GetOnboarding returns the current wizard step
// @Summary Onboarding state
// @Tags onboarding
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.OnboardingView
// @Router /sessions/{sessionID}/onboarding [get]
func (h *OnboardingHandler) GetOnboarding(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.Onboarding.View())
}

// SetRiskProfile records the step 2 answers
// @Summary Set risk profile
// @Tags onboarding
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body models.RiskProfile true "Risk profile"
// @Success 200 {object} services.OnboardingView
// @Failure 400 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/onboarding/risk-profile [put]
func (h *OnboardingHandler) SetRiskProfile(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req models.RiskProfile
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	if err := app.Onboarding.SetRiskProfile(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Onboarding.View())
}

// SetPreferences replaces the step 3 preferences
// @Summary Set investment preferences
// @Tags onboarding
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{preferences=[]string} true "Preferences"
// @Success 200 {object} services.OnboardingView
// @Failure 400 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/onboarding/preferences [put]
func (h *OnboardingHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		Preferences []string `json:"preferences"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	if err := app.Onboarding.SetPreferences(req.Preferences); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Onboarding.View())
}

// TogglePreference flips one step 3 preference
// @Summary Toggle preference
// @Tags onboarding
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{preference=string} true "Preference"
// @Success 200 {object} object{selected=bool}
// @Failure 400 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/onboarding/preferences/toggle [post]
func (h *OnboardingHandler) TogglePreference(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		Preference string `json:"preference" validate:"required"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	selected, err := app.Onboarding.TogglePreference(req.Preference)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "selected": selected})
}

// UpdatePersonalInfo edits the step 5 form
// @Summary Update personal info
// @Description Fields may be partially filled while editing; the step only proceeds once every required field is present and confirmed.
// @Tags onboarding
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{personalInfo=models.PersonalInfo,confirmed=bool} true "Personal info"
// @Success 200 {object} services.OnboardingView
// @Router /sessions/{sessionID}/onboarding/personal-info [put]
func (h *OnboardingHandler) UpdatePersonalInfo(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		PersonalInfo models.PersonalInfo `json:"personalInfo" validate:"-"`
		Confirmed    bool                `json:"confirmed"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	app.Onboarding.UpdatePersonalInfo(req.PersonalInfo)
	app.Onboarding.SetConfirmed(req.Confirmed)
	writeJSON(w, http.StatusOK, app.Onboarding.View())
}

// Next advances the wizard
// @Summary Next step
// @Description Fails with 422 while the current step is incomplete. On step 5 it submits.
// @Tags onboarding
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} RouteResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/onboarding/next [post]
func (h *OnboardingHandler) Next(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route, err := app.Onboarding.Next()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app.Navigate(route)
	writeRoute(w, app.Route(), app.Onboarding.View())
}

// Submit finishes onboarding
// @Summary Submit onboarding
// @Description Requires every step to be complete. Completion lands after a short success screen.
// @Tags onboarding
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 202 {object} RouteResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/onboarding/submit [post]
func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	route, err := app.Onboarding.Submit()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, RouteResponse{Success: true, Route: route, Path: route.Path(), Data: app.Onboarding.View()})
}
