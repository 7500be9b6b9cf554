package routes

import (
	"bluujobs/internal/delivery/http/handler"
	"bluujobs/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

// Registry holds every handler mounted on the app.
type Registry struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Jobs          *handler.JobHandler
	Applications  *handler.ApplicationHandler
	Notifications *handler.NotificationHandler
	Favorites     *handler.FavoriteHandler
	Messages      *handler.MessageHandler
	Reviews       *handler.ReviewHandler
	Admin         *handler.AdminHandler

	// Events upgrades /ws connections. Nil leaves the route unmounted.
	Events fiber.Handler

	AuthMiddleware *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
	if r.Events != nil {
		app.Get("/ws", r.Events)
	}
	r.registerAPI(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	v1 := app.Group("/api/v1")
	protect := r.AuthMiddleware.Middleware()

	r.Auth.RegisterRoutes(v1.Group("/auth"), protect)
	r.Jobs.RegisterRoutes(v1.Group("/jobs"), protect)
	r.Reviews.RegisterRoutes(v1.Group("/reviews", protect))

	r.Users.RegisterRoutes(v1.Group("/users", protect))
	r.Applications.RegisterRoutes(v1.Group("/applications", protect))
	r.Notifications.RegisterRoutes(v1.Group("/notifications", protect))
	r.Favorites.RegisterRoutes(v1.Group("/favorites", protect))
	r.Messages.RegisterRoutes(v1.Group("/messages", protect))
	r.Admin.RegisterRoutes(v1.Group("/admin", protect, middleware.RequireAdmin()))
}
