package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ruralpay/investflow/internal/services"
)

type contextKey string

const appKey contextKey = "app"

// SessionLoader resolves the {sessionID} URL parameter to a live session and
// stores it on the request context.
func SessionLoader(registry *services.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			if sessionID == "" {
				services.SendErrorResponse(w, "Session id required", http.StatusBadRequest, nil)
				return
			}

			app, err := registry.Get(sessionID)
			if errors.Is(err, services.ErrSessionNotFound) {
				services.SendErrorResponse(w, "Session not found", http.StatusNotFound, nil)
				return
			}
			if err != nil {
				log.Error().Err(err).Str("session_id", sessionID).Msg("load session")
				services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
				return
			}

			ctx := context.WithValue(r.Context(), appKey, app)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AppFromContext returns the session stored by SessionLoader.
func AppFromContext(ctx context.Context) (*services.App, bool) {
	app, ok := ctx.Value(appKey).(*services.App)
	return app, ok && app != nil
}

// WithApp stores app on ctx the way SessionLoader does.
func WithApp(ctx context.Context, app *services.App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// SecurityHeaders sets the response headers every API reply carries.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
