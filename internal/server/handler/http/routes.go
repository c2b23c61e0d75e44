package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/middleware"
)

// RouterDeps are the collaborators of the router besides the page handler.
type RouterDeps struct {
	// Identity decodes the stored session for the route guard.
	Identity middleware.Identity
	// Metrics serves /metrics and instruments every request. Optional.
	Metrics Instrumenter
	// Limiter throttles sign-in attempts. Optional.
	Limiter *middleware.LoginLimiter
	// Logger receives the request log.
	Logger *zap.Logger
}

// Instrumenter records per-request metrics and exposes them.
type Instrumenter interface {
	Instrument(next http.Handler) http.Handler
	Handler() http.Handler
}

// NewRouter constructs the dashboard handler.
//
// Routes:
//
//	GET  /healthz, /metrics             → liveness, prometheus scrape
//	GET  /login, POST /login            → sign-in (POST throttled per IP)
//	POST /logout                        → sign-out
//	GET  /                              → dashboard
//	/meds, /meds/new, /meds/{id}/...    → main stock
//	/expiration, /notify/...            → expiration report, notifications
//	/stock/secondary/...                → secondary stock, returns, withdrawal log form
//	/logs, /stats                       → withdrawal log, statistics
//	/users/...                          → user management (admin only)
//	/settings, /types, /vaccines        → profile, type catalog, vaccines
//	/reports/*.pdf                      → PDF downloads
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. WithRequestLogging(logger)
//  3. Metrics instrumentation
//  4. RequireSameOrigin on every unsafe method
//  5. RequireSession on every page except sign-in, health and metrics
func NewRouter(h *Handler, deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Instrument)
	}
	r.Use(middleware.RequireSameOrigin)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(deps.Limiter.Middleware)
		}
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(deps.Identity))

		r.Post("/logout", h.Logout)
		r.Get("/", h.Dashboard)

		r.Route("/meds", func(r chi.Router) {
			r.Get("/", h.Meds)
			r.Post("/", h.CreateMed)
			r.Get("/new", h.NewMedForm)
			r.Get("/{id}", h.Med)
			r.Post("/{id}", h.UpdateMed)
			r.Post("/{id}/delete", h.DeleteMed)
			r.Post("/{id}/withdraw", h.WithdrawMed)
			r.Get("/{id}/qr", h.MedQR)
		})

		r.Get("/expiration", h.Expiration)
		r.Post("/notify/expiry", h.NotifyExpiry)
		r.Post("/notify/low-stock", h.NotifyLowStock)

		r.Route(secondaryPath, func(r chi.Router) {
			r.Get("/", h.Secondary)
			r.Post("/{id}/return", h.ReturnMed)
			r.Post("/{id}/log", h.LogWithdrawal)
			r.Get("/{id}/qr", h.SecondaryQR)
		})

		r.Get("/logs", h.WithdrawalLogs)
		r.Post("/logs/{id}/delete", h.DeleteLog)
		r.Get("/stats", h.Stats)

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", h.UserList)
			r.Post("/", h.RegisterUser)
			r.Get("/new", h.NewUserForm)
			r.Get("/{id}", h.User)
			r.Post("/{id}", h.UpdateUser)
			r.Post("/{id}/delete", h.DeleteUser)
		})

		r.Get("/settings", h.Settings)
		r.Post("/settings", h.UpdateSettings)
		r.Get("/types", h.Types)
		r.Post("/types", h.AddType)
		r.Post("/types/{id}/delete", h.DeleteType)
		r.Get("/vaccines", h.Vaccines)

		r.Get("/reports/withdrawals.pdf", h.WithdrawalReport)
		r.Get("/reports/expiration.pdf", h.ExpirationPDF)
	})

	return r
}
