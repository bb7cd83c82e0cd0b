package handlers

import (
	"net/http"

	"github.com/ruralpay/investflow/internal/services"
)

type VerificationHandler struct {
	validator *services.ValidationHelper
}

func NewVerificationHandler() *VerificationHandler {
	return &VerificationHandler{validator: services.NewValidationHelper()}
}

// GetVerification returns the identity-verification sub-flow
// @Summary Verification state
// @Tags verification
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.VerificationView
// @Router /sessions/{sessionID}/verification [get]
func (h *VerificationHandler) GetVerification(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.Verification.View())
}

// SelectBank picks the bank to verify with
// @Summary Select bank
// @Tags verification
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{bank=string} true "Bank code or name"
// @Success 200 {object} services.VerificationView
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/verification/bank [put]
func (h *VerificationHandler) SelectBank(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		Bank string `json:"bank" validate:"required"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	if err := app.Verification.SelectBank(req.Bank); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Verification.View())
}

// Proceed starts the bank redirect
// @Summary Proceed to bank
// @Description Also retries from the failed stage
// @Tags verification
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 202 {object} services.VerificationView
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/verification/proceed [post]
func (h *VerificationHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	if err := app.Verification.Proceed(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, app.Verification.View())
}

// Retry retries a failed verification
// @Summary Retry verification
// @Tags verification
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 202 {object} services.VerificationView
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/verification/retry [post]
func (h *VerificationHandler) Retry(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	if err := app.Verification.Retry(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, app.Verification.View())
}

// UsePhotoUpload switches to the ID photo fallback
// @Summary Use photo upload
// @Tags verification
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.VerificationView
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/verification/photo-upload [post]
func (h *VerificationHandler) UsePhotoUpload(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	if err := app.Verification.UsePhotoUpload(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Verification.View())
}

// CapturePhoto records one side of the ID
// @Summary Capture ID photo
// @Tags verification
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body object{side=string} true "front or back"
// @Success 200 {object} services.VerificationView
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/verification/photos [post]
func (h *VerificationHandler) CapturePhoto(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}

	var req struct {
		Side string `json:"side" validate:"required,oneof=front back"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	if err := app.Verification.CapturePhoto(services.PhotoSide(req.Side)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Verification.View())
}

// VerifyPhotos completes verification from ID photos
// @Summary Verify ID photos
// @Tags verification
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} services.VerificationView
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /sessions/{sessionID}/verification/photos/verify [post]
func (h *VerificationHandler) VerifyPhotos(w http.ResponseWriter, r *http.Request) {
	app, ok := sessionApp(w, r)
	if !ok {
		return
	}
	if err := app.Verification.VerifyPhotos(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Verification.View())
}
