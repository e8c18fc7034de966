package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apictx "github.com/dtroode/auth-service/internal/api/http/context"
	"github.com/dtroode/auth-service/internal/api/http/handler"
	"github.com/dtroode/auth-service/internal/api/http/middleware"
	"github.com/dtroode/auth-service/internal/api/http/respond"
	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/tracing"
)

// Services are the application services the HTTP API is built on.
type Services struct {
	Auth    handler.AuthService
	Users   handler.UserService
	Tenants handler.TenantService
	Tokens  middleware.TokenVerifier
	Keys    handler.KeySet
	Pinger  model.Pinger
}

// Router builds the public HTTP API.
type Router struct {
	services Services
	cookies  handler.CookieConfig
	observer middleware.HTTPObserver
	metrics  http.Handler
	logger   *logger.Logger
}

// New creates new HTTP Router instance. A nil observer disables request
// metrics, a nil metrics handler leaves /metrics unmounted.
func New(
	services Services,
	cookies handler.CookieConfig,
	observer middleware.HTTPObserver,
	metrics http.Handler,
	logger *logger.Logger,
) *Router {
	return &Router{
		services: services,
		cookies:  cookies,
		observer: observer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register returns the configured handler tree.
func (rt *Router) Register() http.Handler {
	ctxMgr := apictx.NewManager()
	decoder := handler.NewDecoder()

	authenticate := middleware.NewAuthenticate(rt.services.Tokens, ctxMgr, rt.logger)
	roles := middleware.NewRoles(ctxMgr, rt.logger)
	adminOnly := roles.Require(model.RoleAdmin)

	authHandler := handler.NewAuth(rt.services.Auth, ctxMgr, decoder, rt.cookies, rt.logger)
	tenantHandler := handler.NewTenant(rt.services.Tenants, decoder, rt.logger)
	userHandler := handler.NewUser(rt.services.Users, decoder, rt.logger)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.NewLogging(rt.logger).Handle,
		middleware.NewRecovery(rt.logger).Handle,
	)
	if rt.observer != nil {
		r.Use(middleware.Metrics(rt.observer))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusNotFound, apierrors.Envelope{
			Errors: []apierrors.Entry{{Type: apierrors.TypeNotFound, Msg: "Not found"}},
		})
	})

	r.Get("/.well-known/jwks.json", handler.JWKS(rt.services.Keys))
	r.Get("/healthz", handler.Health(rt.services.Pinger, rt.logger))
	if rt.metrics != nil {
		r.Handle("/metrics", rt.metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(tracing.HTTPMiddleware("auth"))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(authenticate.Access).Get("/self", authHandler.Self)
		r.With(authenticate.Refresh).Post("/refresh", authHandler.Refresh)
		r.With(authenticate.Refresh).Post("/logout", authHandler.Logout)
	})

	r.Route("/tenants", func(r chi.Router) {
		r.Use(tracing.HTTPMiddleware("tenants"))

		r.Get("/", tenantHandler.List)
		r.Group(func(r chi.Router) {
			r.Use(authenticate.Access, adminOnly)

			r.Post("/", tenantHandler.Create)
			r.Get("/{id}", tenantHandler.Get)
			r.Patch("/{id}", tenantHandler.Update)
			r.Delete("/{id}", tenantHandler.Delete)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(tracing.HTTPMiddleware("users"), authenticate.Access, adminOnly)

		r.Post("/", userHandler.Create)
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Patch("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)
	})

	return r
}
