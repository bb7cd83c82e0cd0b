package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type PromptHandler struct{}

func NewPromptHandler() *PromptHandler {
	return &PromptHandler{}
}

// GetBanners returns which upsell prompts are visible
// @Summary Banner visibility
// @Tags prompts
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.Banners
// @Router /sessions/{sessionID}/banners [get]
func (h *PromptHandler) GetBanners(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.Banners())
}

// Dismiss hides a prompt for good
// @Summary Dismiss prompt
// @Description type is one of walletBanner, cashbackPrompt, quickCard, searchCard. Dismissing twice is a no-op.
// @Tags prompts
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param type path string true "Prompt type"
// @Success 200 {object} services.Banners
// @Failure 400 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/prompts/{type}/dismiss [post]
func (h *PromptHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	if err := app.DismissPrompt(r.Context(), chi.URLParam(r, "type")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Banners())
}
