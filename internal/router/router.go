package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"techie-backend/internal/handlers"
	"techie-backend/internal/middleware"
)

func New(
	logger zerolog.Logger,
	jwtAuth *middleware.JWTAuth,
	scanLimiter *middleware.RateLimiter,
	checkInHandler *handlers.CheckInHandler,
	usageHandler *handlers.UsageHandler,
	reportHandler *handlers.ReportHandler,
	userHandler *handlers.UserHandler,
	qrHandler *handlers.QRHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// ──── Pricing (public) ────
		r.Get("/plans", usageHandler.Plans)

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// ──── Check-in Routes ────
			r.Route("/check-ins", func(r chi.Router) {
				r.Post("/", checkInHandler.CheckIn)
				r.Patch("/{id}/checkout", checkInHandler.CheckOut)
				r.With(scanLimiter.Middleware).Post("/scan", checkInHandler.Scan)
				r.Get("/current/{userId}", checkInHandler.Current)
			})

			// ──── User Routes ────
			r.Route("/users", func(r chi.Router) {
				r.Get("/current", userHandler.GetMe)
				r.Post("/change-plan", usageHandler.ChangePlan)

				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Patch("/{userId}", userHandler.Update)
				r.Delete("/{userId}", userHandler.Delete)

				r.Get("/{userId}/recent-activity", checkInHandler.Recent)
				r.Get("/{userId}/weekly-usage", usageHandler.WeeklyUsage)
				r.Get("/{userId}/analytics/weekly", usageHandler.WeeklyAnalytics)
				r.Get("/{userId}/payment-methods", reportHandler.PaymentMethods)

				r.Route("/{userId}/reports", func(r chi.Router) {
					r.Get("/attendance", reportHandler.Attendance)
					r.Get("/usage", reportHandler.Usage)
					r.Get("/billing", reportHandler.Billing)
				})
			})

			// ──── Billing Routes ────
			r.Get("/billings/{userId}/history", reportHandler.BillingHistory)

			// ──── QR Code Routes ────
			r.Route("/qrcode", func(r chi.Router) {
				r.Post("/generate", qrHandler.Generate)
				r.Get("/current", qrHandler.Current)
			})
		})
	})

	return r
}
