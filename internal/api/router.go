package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/underneath-app/underneath/internal/api/handlers"
	"github.com/underneath-app/underneath/internal/api/middleware"
	"github.com/underneath-app/underneath/internal/config"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/notify"
	"github.com/underneath-app/underneath/internal/service"
)

func NewRouter(services *service.Services, hub *notify.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	invitationHandler := handlers.NewInvitationHandler(services.Invitation)
	connectionHandler := handlers.NewConnectionHandler(services.Connection)
	profileHandler := handlers.NewProfileHandler(services.Profile)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/invitations", func(r chi.Router) {
			// Validation is public: a prospective SUB checks a code before
			// having an account. Capped per IP.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(cfg.ValidateRatePer15Min, 15*time.Minute, middleware.KeyByIP))
				r.Post("/validate", invitationHandler.Validate)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleDom))
					r.Use(middleware.RateLimit(cfg.InviteRatePerHour, time.Hour, middleware.KeyByUserID))
					r.Post("/create", invitationHandler.Create)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleDom))
					r.Get("/my", invitationHandler.My)
					r.Post("/{id}/resend", invitationHandler.Resend)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleSub))
					r.Post("/accept", invitationHandler.Accept)
				})
			})
		})

		r.Route("/connections", func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleDom, domain.RoleSub))
				r.Get("/my-connection", connectionHandler.MyConnection)
				r.Post("/terminate", connectionHandler.Terminate)
				r.Get("/availability", connectionHandler.Availability)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/all", connectionHandler.AdminList)
				r.Post("/create", connectionHandler.AdminCreate)
				r.Post("/{id}/terminate", connectionHandler.AdminTerminate)
			})
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Save)
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
