package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	mW "github.com/ruralpay/investflow/internal/middleware"
	"github.com/ruralpay/investflow/internal/services"
)

// NewRouter wires every API route onto a chi router.
func NewRouter(registry *services.Registry, banks *services.BankService) chi.Router {
	sessions := NewSessionHandler(registry)
	onboarding := NewOnboardingHandler()
	verification := NewVerificationHandler()
	investment := NewInvestmentHandler()
	prompts := NewPromptHandler()
	payments := NewPaymentHandler()

	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/banks", banks.GetAllBanks)
		r.Get("/funds", investment.ListFunds)
		r.Get("/merchants", payments.ListMerchants)

		r.Post("/sessions", sessions.CreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(mW.SessionLoader(registry))

			r.Get("/", sessions.GetSession)
			r.Delete("/", sessions.DeleteSession)
			r.Post("/navigate", sessions.Navigate)
			r.Post("/back", sessions.Back)
			r.Post("/exit", sessions.Exit)
			r.Post("/exit-modal/{action}", sessions.ExitModal)
			r.Post("/invest", sessions.Invest)
			r.Post("/invest/start", sessions.StartInvesting)
			r.Post("/search", sessions.Search)

			r.Get("/banners", prompts.GetBanners)
			r.Post("/prompts/{type}/dismiss", prompts.Dismiss)

			r.Get("/onboarding", onboarding.GetOnboarding)
			r.Put("/onboarding/risk-profile", onboarding.SetRiskProfile)
			r.Put("/onboarding/preferences", onboarding.SetPreferences)
			r.Post("/onboarding/preferences/toggle", onboarding.TogglePreference)
			r.Put("/onboarding/personal-info", onboarding.UpdatePersonalInfo)
			r.Post("/onboarding/next", onboarding.Next)
			r.Post("/onboarding/submit", onboarding.Submit)

			r.Get("/verification", verification.GetVerification)
			r.Put("/verification/bank", verification.SelectBank)
			r.Post("/verification/proceed", verification.Proceed)
			r.Post("/verification/retry", verification.Retry)
			r.Post("/verification/photo-upload", verification.UsePhotoUpload)
			r.Post("/verification/photos", verification.CapturePhoto)
			r.Post("/verification/photos/verify", verification.VerifyPhotos)

			r.Get("/investment", investment.GetInvestment)
			r.Post("/investment/select", investment.SelectFund)
			r.Post("/investment/final", investment.ProceedToFinal)
			r.Put("/investment/checkboxes/{index}", investment.SetCheckbox)
			r.Post("/investment/checkboxes/{index}/toggle", investment.ToggleCheckbox)
			r.Post("/investment/confirm", investment.Confirm)
			r.Get("/investment/receipt", investment.GetReceipt)
			r.Post("/investment/start-another", investment.StartAnother)

			r.Get("/payments", payments.GetPayments)
			r.Post("/payments", payments.PayMerchant)
		})
	})

	return r
}
