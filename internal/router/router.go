package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-enrollment-server/internal/config"
	"go-enrollment-server/internal/handler"
	"go-enrollment-server/internal/middleware"
	"go-enrollment-server/internal/model"
)

type Handlers struct {
	Health     *handler.HealthHandler
	Docs       *handler.DocsHandler
	Token      *handler.TokenHandler
	Account    *handler.AccountHandler
	Role       *handler.RoleHandler
	Class      *handler.ClassHandler
	Selection  *handler.SelectionHandler
	Payment    *handler.PaymentHandler
	Enrollment *handler.EnrollmentHandler
	Audit      *handler.AuditHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.StrictRateLimitRPM, "/jwt", "/create-payment-intent")

	r.Use(middleware.Recovery)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	authed := r.With(authMiddleware.RequireAuth)
	adminOnly := authed.With(authMiddleware.RequireRoles(model.RoleAdmin))

	r.Get("/", h.Health.Banner)
	r.Get("/health", h.Health.Health)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	r.Post("/jwt", h.Token.Issue)

	r.Post("/users", h.Account.Register)
	adminOnly.Get("/users", h.Account.List)

	authed.Get("/users/admin/{email}", h.Role.IsAdmin)
	authed.Patch("/users/admin/{id}", h.Role.PromoteAdmin)
	authed.Get("/users/instructor/{email}", h.Role.IsInstructor)
	authed.Patch("/users/instructor/{id}", h.Role.PromoteInstructor)

	r.Get("/class", h.Class.List)
	authed.With(authMiddleware.RequireRoles(model.RoleInstructor, model.RoleAdmin)).Post("/class", h.Class.Create)
	authed.Get("/myclass", h.Class.Mine)

	authed.Get("/select", h.Selection.List)
	authed.Post("/select", h.Selection.Add)
	authed.Delete("/select/{id}", h.Selection.Remove)

	r.Post("/create-payment-intent", h.Payment.CreateIntent)
	r.Post("/payments", h.Payment.Record)
	r.Get("/enrolled", h.Enrollment.List)

	adminOnly.Get("/audit", h.Audit.List)

	return r
}
