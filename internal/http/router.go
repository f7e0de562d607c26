package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/hackreg/registration-api/internal/auth"
	"github.com/hackreg/registration-api/internal/config"
	"github.com/hackreg/registration-api/internal/httputil"
	"github.com/hackreg/registration-api/internal/logging"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, authHandler *auth.Handler, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/u", func(r chi.Router) {
		// Public routes
		r.Get("/test", handleTest)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/verify/{token}", authHandler.VerifyEmail)
		r.Get("/resetpw/{email}", authHandler.ForgotPassword)
		r.Post("/resetpw/{token}", authHandler.ResetPassword)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/", authHandler.Current)
			r.Get("/reverify", authHandler.Reverify)
			r.Post("/changepw", authHandler.ChangePassword)

			// Verified registrants only
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireVerified)
				r.Get("/testp", handleTest)
			})
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}

// handleTest answers the routing probes, public and protected alike
// @Summary      Probe endpoint
// @Tags         test
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /api/u/test [get]
func handleTest(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"msg": "Users Works"}, http.StatusOK)
}
