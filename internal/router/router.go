package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/config"
	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/handler"
	mw "github.com/spicegarden/pos/internal/middleware"
	"github.com/spicegarden/pos/internal/service"
	"github.com/spicegarden/pos/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Catalog, roster and settings writes sit behind the manager role.
func New(cfg *config.Config, pos *service.POS, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(pos, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		handler.NewTablesHandler(pos).RegisterRoutes(r)
		handler.NewOrdersHandler(pos).RegisterRoutes(r)
		handler.NewReportsHandler(pos).RegisterRoutes(r)

		menuHandler := handler.NewMenuHandler(pos)
		menuHandler.RegisterRoutes(r)

		settingsHandler := handler.NewSettingsHandler(pos)
		settingsHandler.RegisterRoutes(r)

		// Manager-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.StaffRoleManager))
			menuHandler.RegisterManagerRoutes(r)
			settingsHandler.RegisterManagerRoutes(r)
			handler.NewStaffHandler(pos).RegisterRoutes(r)
		})
	})

	logrus.Info("router initialized")
	return r
}
