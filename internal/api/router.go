package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/plateful/recipebox/internal/api/handlers"
	"github.com/plateful/recipebox/internal/api/middleware"
	"github.com/plateful/recipebox/internal/auth"
	"github.com/plateful/recipebox/internal/media"
	"github.com/plateful/recipebox/internal/recipes"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	MediaStore     media.Store
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	recipeService := recipes.NewService(cfg.DB, cfg.MediaStore, cfg.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	userHandler := handlers.NewUserHandler(cfg.AuthService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	tagHandler := handlers.NewTagHandler(cfg.DB)
	ingredientHandler := handlers.NewIngredientHandler(cfg.DB)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public account endpoints
		r.Post("/users", userHandler.Create)
		r.Post("/users/token", userHandler.CreateToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", userHandler.Me)
				r.Patch("/", userHandler.UpdateMe)
				r.Put("/", userHandler.UpdateMe)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", recipeHandler.List)
				r.Post("/", recipeHandler.Create)
				r.Get("/{id}", recipeHandler.Get)
				r.Patch("/{id}", recipeHandler.Update)
				r.Put("/{id}", recipeHandler.Update)
				r.Delete("/{id}", recipeHandler.Delete)
				r.Post("/{id}/image", recipeHandler.UploadImage)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", tagHandler.List)
				r.Post("/", tagHandler.Create)
				r.Patch("/{id}", tagHandler.Update)
				r.Delete("/{id}", tagHandler.Delete)
			})

			r.Route("/ingredients", func(r chi.Router) {
				r.Get("/", ingredientHandler.List)
				r.Post("/", ingredientHandler.Create)
				r.Patch("/{id}", ingredientHandler.Update)
				r.Delete("/{id}", ingredientHandler.Delete)
			})
		})
	})

	// Locally stored images
	if local, ok := cfg.MediaStore.(*media.LocalStore); ok {
		fileServer := http.FileServer(http.Dir(local.Dir()))
		r.Handle("/media/*", http.StripPrefix("/media/", fileServer))
	}

	return &Router{r}
}
