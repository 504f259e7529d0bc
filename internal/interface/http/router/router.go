package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/monitoring"
)

// ProtectedRoutes is implemented by every handler whose routes need an
// operator token.
type ProtectedRoutes interface {
	RegisterProtectedRoutes(app *fiber.App)
}

type Options struct {
	JWTSecret string
	// RequestLog enables the per-request access log.
	RequestLog bool
}

// New builds the HTTP API. /health, /metrics and sign-in are public; every
// route registered by protected handlers requires a valid operator token.
func New(opts Options, authHandler *auth.Handler, protected ...ProtectedRoutes) *fiber.App {
	monitoring.Init()

	app := fiber.New(fiber.Config{
		AppName:   "caregiver-registry",
		BodyLimit: 16 * 1024 * 1024,
	})
	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(monitoring.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(monitoring.Handler()))

	authHandler.RegisterPublicRoutes(app)

	app.Use(auth.Middleware(opts.JWTSecret))

	authHandler.RegisterProtectedRoutes(app)
	for _, h := range protected {
		h.RegisterProtectedRoutes(app)
	}
	return app
}
