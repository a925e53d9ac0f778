package app

import (
	"net/http"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/aliuyar1234/okrlaunch/internal/config"
	"github.com/aliuyar1234/okrlaunch/internal/invites"
	"github.com/aliuyar1234/okrlaunch/internal/okrs"
	"github.com/aliuyar1234/okrlaunch/internal/planning"
	"github.com/aliuyar1234/okrlaunch/internal/reminders"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/aliuyar1234/okrlaunch/internal/wizard"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(cfg *config.Config, st store.Store, c cache.Store, svc *Services) *chi.Mux {
	r := chi.NewRouter()

	cookies := auth.NewCookieOptions(cfg)

	// Middleware stack
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(apperrors.RequestIDMiddleware) // Add request ID to context
	r.Use(LoggingMiddleware)             // Structured request logging
	r.Use(RecoveryMiddleware)            // Recover from panics
	r.Use(MetricsMiddleware)             // Request counters by route pattern
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.AuthMiddleware(cfg.JWTSecret)) // Resolve bearer or cookie sessions

	// Health and metrics (no authentication required)
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(st, c))
	r.Handle("/metrics", promhttp.Handler())

	// Sign-in
	r.Route("/auth", func(r chi.Router) {
		r.Use(NoCacheMiddleware)
		r.With(LoginRateLimitMiddleware()).Get("/login", auth.HandleLogin(svc.OAuth, cookies))
		r.Get("/callback", auth.HandleCallback(svc.OAuth, cookies))
		r.With(auth.RequireAuth, auth.RequireCSRFForCookies).Post("/logout", auth.HandleLogout())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Invitations are reached by token only, so limit guessing per IP.
		r.Group(func(r chi.Router) {
			r.Use(IPRateLimitMiddleware(cfg.RateLimitRPM))
			r.Get("/invite/{token}", invites.HandleValidate(svc.Invites))
			r.Put("/invite/{token}/okrs", invites.HandleUpdateDraft(svc.Invites))
			r.Post("/invite/accept", invites.HandleAccept(svc.Invites))
		})

		r.Get("/okr/{userId}", okrs.HandleGetLatest(svc.OKRs))

		r.With(auth.RequireCSRFForCookies).Post("/user/reminder-settings", reminders.HandleUpdateSettings(svc.Settings))

		// Bearer CRON_SECRET is checked by the handler.
		r.Get("/cron/send-okr-reminders", reminders.HandleCron(svc.Dispatcher, cfg.CronSecret))

		r.Route("/flows", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(auth.RequireCSRFForCookies)
			r.Use(UserRateLimitMiddleware(cfg.RateLimitRPM))

			r.Post("/research", planning.HandleResearch(svc.Planning))
			r.Post("/generate", planning.HandleGenerate(svc.Planning))
			r.Post("/regenerate", planning.HandleRegenerate(svc.Planning))
			r.Post("/save", planning.HandleSave(svc.Planning))
			r.Post("/invite-team", planning.HandleInviteTeam(svc.Planning))
		})

		r.Route("/wizard", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(auth.RequireCSRFForCookies)
			r.Use(NoCacheMiddleware)

			r.Get("/", wizard.HandleGet(svc.Wizard))
			r.Post("/actions", wizard.HandleApply(svc.Wizard))
		})
	})

	return r
}

// handleHealthz returns a simple liveness check
// Always returns 200 OK if the service is running
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz returns a readiness check that includes database and cache
// connectivity. Returns 200 OK if service is ready to accept traffic, 503 if not
func handleReadyz(st store.Store, c cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := st.Ping(ctx); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Database connection failed")
			return
		}
		if err := c.Ping(ctx); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Cache connection failed")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
			"cache":  "ok",
		})
	}
}

// rateLimitWindow is the window for the per-minute limits in the router.
const rateLimitWindow = time.Minute
