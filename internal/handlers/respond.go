package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ruralpay/investflow/internal/middleware"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/services"
)

const maxBodyBytes = 1_048_576

// RouteResponse is returned by every action that may move the session.
type RouteResponse struct {
	Success bool         `json:"success"`
	Route   models.Route `json:"route"`
	Path    string       `json:"path" example:"/invest-onboarding?step=2"`
	Data    any          `json:"data,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v *services.ValidationHelper, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := v.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeRoute(w http.ResponseWriter, route models.Route, data any) {
	writeJSON(w, http.StatusOK, RouteResponse{Success: true, Route: route, Path: route.Path(), Data: data})
}

// writeServiceError maps flow errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case services.IsValidationError(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnknownOption),
		errors.Is(err, services.ErrUnknownBank),
		errors.Is(err, services.ErrUnknownFund),
		errors.Is(err, services.ErrUnknownMerchant),
		errors.Is(err, services.ErrNoFundSelected),
		errors.Is(err, services.ErrInvalidAmount):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		services.SendErrorResponse(w, "Internal server error", status, nil)
		return
	}
	services.SendErrorResponse(w, err.Error(), status, nil)
}

// sessionApp fetches the session loaded by middleware.SessionLoader.
func sessionApp(w http.ResponseWriter, r *http.Request) (*services.App, bool) {
	app, ok := middleware.AppFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Session not found", http.StatusNotFound, nil)
		return nil, false
	}
	return app, true
}
