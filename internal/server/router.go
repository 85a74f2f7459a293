package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/enhancemyseo/enhancemyseo/internal/handler"
	"github.com/enhancemyseo/enhancemyseo/internal/middleware"
)

// RouterConfig carries the middleware dependencies of the API router.
type RouterConfig struct {
	Logger   *slog.Logger
	Tokens   middleware.TokenParser
	Denylist middleware.RevocationChecker
	Limiter  middleware.RateLimiter

	RateLimitUser bool
	RateLimitAuth bool
	AuthRPS       int
	AuthBurst     int

	CORSOrigins   []string
	MaxBodySize   int64
	IsDevelopment bool
}

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Root      *handler.Handler
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Brand     *handler.BrandHandler
	Keyword   *handler.KeywordHandler
	Article   *handler.ArticleHandler
	Product   *handler.ProductHandler
	Discovery *handler.DiscoveryHandler
	Activity  *handler.ActivityHandler
	Admin     *handler.AdminHandler
	Metrics   *handler.MetricsHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins
	r.Use(middleware.CORS(corsCfg))

	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)

	r.Get("/", h.Root.Hello)

	authMW := middleware.Auth(middleware.AuthConfig{
		Logger:   cfg.Logger,
		Tokens:   cfg.Tokens,
		Denylist: cfg.Denylist,
	})
	limits := middleware.RateLimitConfig{
		Logger:      cfg.Logger,
		Limiter:     cfg.Limiter,
		UserEnabled: cfg.RateLimitUser && cfg.Limiter != nil,
		IPEnabled:   cfg.RateLimitAuth && cfg.Limiter != nil,
		IPRPS:       cfg.AuthRPS,
		IPBurst:     cfg.AuthBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireJSON)

		// Public auth endpoints, limited per client IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(limits))
			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
		})

		// Everything else requires a session token
		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Use(middleware.RateLimitUser(limits))

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/brands", func(r chi.Router) {
				r.Get("/", h.Brand.List)
				r.Post("/", h.Brand.Create)
				r.Get("/{id}", h.Brand.Get)
				r.Patch("/{id}", h.Brand.Update)
				r.Delete("/{id}", h.Brand.Delete)
			})

			r.Get("/usage", h.Activity.Usage)

			r.Post("/keywords/generate", h.Keyword.Generate)

			r.Route("/articles", func(r chi.Router) {
				r.Post("/generate", h.Article.Generate)
				r.Get("/", h.Article.List)
				r.Get("/{id}", h.Article.Get)
				r.Patch("/{id}", h.Article.Update)
				r.Delete("/{id}", h.Article.Delete)
				r.Post("/{id}/publish", h.Article.Publish)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/optimize", h.Product.Optimize)
				r.Get("/", h.Product.List)
				r.Delete("/{id}", h.Product.Delete)
			})

			r.Post("/discovery/search", h.Discovery.Search)

			r.Route("/history", func(r chi.Router) {
				r.Get("/", h.Activity.ListHistory)
				r.Delete("/", h.Activity.ClearHistory)
				r.Delete("/{id}", h.Activity.DeleteHistory)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Post("/usage/reset", h.Admin.ResetUsage)
				r.Get("/users/{id}", h.Admin.GetUser)
				r.Patch("/users/{id}/tier", h.Admin.SetTier)
				r.Post("/products/bulk-optimize", h.Product.BulkOptimize)
				r.Get("/stats", h.Admin.Stats)
				r.Get("/metrics", h.Metrics.Metrics)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.Root.NotFound)
	r.MethodNotAllowed(h.Root.MethodNotAllowed)

	return r
}
