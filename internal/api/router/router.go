package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/contractor-leads/internal/content"
	"github.com/wolfman30/contractor-leads/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/contractor-leads/internal/http/middleware"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	FormsHandler   *handlers.FormsHandler
	LeadsHandler   *handlers.LeadsHandler
	AdminHandler   *handlers.AdminHandler
	UploadHandler  *handlers.UploadHandler
	Projects       *handlers.ContentHandler[content.Project]
	Reviews        *handlers.ContentHandler[content.Review]
	Posts          *handlers.ContentHandler[content.Post]
	MetricsHandler http.Handler

	// LeadRateLimiter throttles lead submissions per client IP (optional).
	LeadRateLimiter *httpmiddleware.RateLimiter

	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public API used by the marketing site
	r.Route("/api", func(api chi.Router) {
		if cfg.FormsHandler != nil {
			api.Get("/forms", cfg.FormsHandler.List)
			api.Get("/forms/{serviceID}", cfg.FormsHandler.Get)
			api.Post("/forms/{serviceID}/steps/{step}/validate", cfg.FormsHandler.ValidateStep)
		}
		if cfg.LeadsHandler != nil {
			submit := api.With()
			if cfg.LeadRateLimiter != nil {
				submit = api.With(httpmiddleware.RateLimit(cfg.LeadRateLimiter))
			}
			submit.Post("/leads/{serviceID}", cfg.LeadsHandler.Submit)
		}
		if cfg.Projects != nil {
			api.Get("/projects", cfg.Projects.ListPublished)
		}
		if cfg.Reviews != nil {
			api.Get("/reviews", cfg.Reviews.ListPublished)
		}
		if cfg.Posts != nil {
			api.Get("/posts", cfg.Posts.ListPublished)
			api.Get("/posts/{slug}", cfg.Posts.GetPublishedBySlug)
		}
	})

	// Admin dashboard (HMAC JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminHandler != nil {
				admin.Get("/session", cfg.AdminHandler.Session)
				admin.Get("/submissions", cfg.AdminHandler.Submissions)
				admin.Get("/queue", cfg.AdminHandler.Queue)
			}
			if cfg.Projects != nil {
				admin.Mount("/projects", cfg.Projects.AdminRoutes())
			}
			if cfg.Reviews != nil {
				admin.Mount("/reviews", cfg.Reviews.AdminRoutes())
			}
			if cfg.Posts != nil {
				admin.Mount("/posts", cfg.Posts.AdminRoutes())
			}
			if cfg.UploadHandler != nil {
				admin.Post("/uploads", cfg.UploadHandler.Upload)
			}
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
