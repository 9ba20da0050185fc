package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/sproutfin/sprout/internal/config"
	"github.com/sproutfin/sprout/internal/flow"
	"github.com/sproutfin/sprout/internal/i18n"
	"github.com/sproutfin/sprout/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Cache    *redis.Client
	Logger   *slog.Logger
	Resolver *i18n.Resolver
	Sessions *flow.Registry
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !config.IsDev(d.Cfg.AppEnv) && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	if d.Resolver == nil || d.Sessions == nil {
		return fmt.Errorf("resolver and session registry are required")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestContext())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1", middleware.Audit(d.Logger))
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.LocalRequestID).(string)
		return c.JSON(fiber.Map{"status": "ok", "request_id": reqID})
	})

	RegisterLanguageRoutes(api, d.Resolver)

	rateLimiter := middleware.OTPRateLimit(d.Cache, 5)
	RegisterSessionRoutes(api, d.Sessions, d.Resolver, rateLimiter)

	return nil
}
