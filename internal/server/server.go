package server

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"
	redisstore "github.com/gofiber/storage/redis/v3"
	"github.com/gofiber/template/html/v3"
	"github.com/google/uuid"

	"recordlookup/internal/config"
	"recordlookup/internal/handlers"
	"recordlookup/web"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App   *fiber.App
	Cfg   *config.Config
	Views *html.Engine

	// Checks, when set before RegisterRoutes, is reported by /readyz.
	Checks handlers.StatusReporter
}

// New creates a new server with middleware configured.
func New(cfg *config.Config) *Server {
	// Setup template engine
	engine := web.NewEngine()
	engine.Reload(cfg.IsDev())

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layouts/main",
		UnescapePath: true, // Positional lookups carry user input in the path
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}
			if code == fiber.StatusNotFound {
				message = "The page you requested does not exist."
			}

			return c.Status(code).Render("error", handlers.WithLayout(fiber.Map{
				"Title":   "Error",
				"Message": message,
			}, cfg))
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New())

	// Rate limiting middleware, shared through Redis when configured
	limiterConfig := limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		Next: func(c fiber.Ctx) bool {
			return isInfraPath(c.Path())
		},
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).Render("error", handlers.WithLayout(fiber.Map{
				"Title":   "Slow down",
				"Message": "Rate limit exceeded. Please try again later.",
			}, cfg))
		},
	}
	if cfg.RedisURL != "" {
		limiterConfig.Storage = redisstore.New(redisstore.Config{URL: cfg.RedisURL})
		slog.Info("rate limiter using redis storage")
	}
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiterConfig))
	}

	// Static files
	app.Get("/static*", static.New("", static.Config{FS: web.Static()}))

	return &Server{
		App:   app,
		Cfg:   cfg,
		Views: engine,
	}
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.Cfg.ServerAddr)
	return s.App.Listen(s.Cfg.ServerAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// isInfraPath reports whether path is a probe, metrics or asset route.
func isInfraPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return strings.HasPrefix(path, "/static")
}
