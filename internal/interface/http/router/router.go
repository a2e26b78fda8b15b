package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/logger"
	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/metrics"
	"github.com/wichananm65/drone-shop-backend/internal/interface/presenter"
)

// RouteRegistrar is implemented by every entity handler.
type RouteRegistrar interface {
	RegisterRoutes(app *fiber.App)
}

// Pinger reports database liveness for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	DB             Pinger
	UploadDir      string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

const corsAllowHeaders = "Origin, Content-Type, Accept, Authorization, X-Request-ID"
const corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"

// New builds the fiber app with the shared middleware chain and mounts the
// given handlers.
func New(opts Options, handlers ...RouteRegistrar) *fiber.App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		// multipart overhead on top of the largest accepted image
		BodyLimit:             int(opts.MaxUploadBytes) + 1<<20,
		ErrorHandler:          presenter.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(preflight)
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: corsAllowMethods,
		AllowHeaders: corsAllowHeaders,
	}))
	app.Use(logger.Middleware(log))
	app.Use(opts.Metrics.Middleware())
	app.Use(requestTimeout(opts.RequestTimeout))

	app.Get("/health", health(opts.DB))
	if opts.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(opts.Gatherer))
	}
	if opts.UploadDir != "" {
		app.Static("/uploads", opts.UploadDir, fiber.Static{Browse: false})
	}

	for _, h := range handlers {
		h.RegisterRoutes(app)
	}
	return app
}

// preflight answers every OPTIONS request with 200 and an empty body.
func preflight(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodOptions {
		return c.Next()
	}
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
	c.Status(fiber.StatusOK)
	return nil
}

func requestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func health(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return presenter.Failure(c, fiber.StatusServiceUnavailable, "database unavailable")
			}
		}
		return presenter.Success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	}
}
