package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bluujobs/internal/config"
	"bluujobs/internal/delivery/http/handler"
	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/delivery/http/routes"
	"bluujobs/internal/scheduler"
	"bluujobs/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
	Hub       *ws.Hub
	Scheduler *scheduler.Scheduler
}

// NewHTTP builds the fiber app over c. events serves /ws and may be nil.
func NewHTTP(c *Container, events fiber.Handler) *fiber.App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)

	checks := map[string]handler.Pinger{}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if p, ok := c.KV.(handler.Pinger); ok {
		checks["store"] = p
	}

	reg := &routes.Registry{
		Health:         handler.NewHealthHandler(checks),
		Auth:           handler.NewAuthHandler(c.Auth, c.JWT),
		Users:          handler.NewUserHandler(c.Users),
		Jobs:           handler.NewJobHandler(c.Jobs),
		Applications:   handler.NewApplicationHandler(c.Applications),
		Notifications:  handler.NewNotificationHandler(c.Notifications),
		Favorites:      handler.NewFavoriteHandler(c.Favorites),
		Messages:       handler.NewMessageHandler(c.Messages),
		Reviews:        handler.NewReviewHandler(c.Reviews),
		Admin:          handler.NewAdminHandler(c.Admin),
		Events:         events,
		AuthMiddleware: middleware.NewAuthMiddleware(c.JWT, c.Auth),
	}
	reg.Register(f)
	return f
}

// Bootstrap builds the container, seeds it when configured, starts the event
// hub and the expiry sweep, and returns the app with its cleanup.
func Bootstrap(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	if logger == nil {
		logger = log.Default()
	}

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.App.SeedOnStart {
		n, err := c.Seed(ctx)
		if err != nil {
			_ = c.Close()
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		logger.Printf("[App] seed complete written=%d", n)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	hub := ws.NewHub(logger)
	go hub.Run(runCtx)
	c.Store.OnCommit(ws.NewPublisher(c.Keys, hub).OnCommit)

	var locker scheduler.Locker
	if c.Cache != nil {
		locker = c.Cache
	}
	sched := scheduler.New(cfg.Scheduler.JobExpirySweep, c.Jobs, locker, c.Keys.Prefix+"jobs:expiry:lock", cfg.Scheduler.LockTTL, logger)
	if err := sched.Start(runCtx); err != nil {
		cancel()
		_ = c.Close()
		return nil, nil, err
	}

	a := &App{
		Fiber:     NewHTTP(c, ws.NewHandler(hub, logger).HandleEvents),
		Container: c,
		Hub:       hub,
		Scheduler: sched,
	}
	cleanup := func() error {
		sched.Stop()
		cancel()
		return c.Close()
	}
	return a, cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
