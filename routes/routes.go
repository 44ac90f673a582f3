package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/polite-web/polite-backend/app"
	"github.com/polite-web/polite-backend/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	h := deps.Handlers()

	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.ViewerIDHeader},
		ExposedHeaders:   []string{"Link", "X-Request-ID", middleware.ViewerIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Anonymous viewer identity for reaction endpoints
	r.Use(middleware.ViewerIdentity)

	// Health check endpoints
	r.Get("/healthz", h.Health.HandleHealth)
	r.Get("/readyz", h.Health.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Posts and their article sections
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.Posts.HandleList)
			r.Get("/{postID}", h.Posts.HandleGet)
			r.Post("/{postID}/enter", h.Posts.HandleEnter)
			r.Get("/{postID}/sections/{section}/comments", h.Comments.HandleList)
		})

		// User registry
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.Users.HandleRegister)
			r.Get("/{userID}", h.Users.HandleGet)
		})

		// Comment moderation pipeline
		r.Route("/comments", func(r chi.Router) {
			r.Post("/suggest", h.Comments.HandleSuggest)
			r.Post("/submit", h.Comments.HandleSubmit)
			r.Delete("/{commentID}", h.Comments.HandleDelete)

			// Reactions on a comment (like / hate)
			r.Post("/{commentID}/reactions", h.Reactions.HandleToggle)
			r.Get("/{commentID}/reactions", h.Reactions.HandleStatus)
		})

		// Pre-submission intervention telemetry
		r.Post("/interventions", h.Interventions.HandleLog)

		// Reward eligibility and claims
		r.Route("/rewards", func(r chi.Router) {
			r.Get("/status", h.Rewards.HandleStatus)
			r.Post("/claim", h.Rewards.HandleClaim)
		})

		// Batched reaction status for a comment list
		r.Post("/reactions/status", h.Reactions.HandleBatchStatus)

		// Direct model endpoints
		r.Route("/models", func(r chi.Router) {
			r.Post("/classify", h.Models.HandleClassify)
			r.Post("/rewrite", h.Models.HandleRewrite)
		})

		// In-process counters
		r.Get("/metrics", h.Models.HandleMetrics)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
