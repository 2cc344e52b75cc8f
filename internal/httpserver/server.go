// Package httpserver assembles the fiber application that serves the API.
package httpserver

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/fekuna/stockroom-service/internal/auth"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const APIPrefix = "/api/v1"

// Routes is implemented by every feature handler.
type Routes interface {
	RegisterRoutes(r fiber.Router)
}

type Config struct {
	AppName string
	// Gate protects everything except /health, /login and /logout. Nil leaves
	// the API open.
	Gate *auth.Gate
	// Ready backs the health check, typically a database ping.
	Ready     func(ctx context.Context) error
	AccessLog io.Writer
}

func New(cfg Config, log logger.ZapLogger, routes ...Routes) *fiber.App {
	if cfg.AppName == "" {
		cfg.AppName = "Stockroom"
	}
	if cfg.AccessLog == nil {
		cfg.AccessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
		Output: cfg.AccessLog,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	api := app.Group(APIPrefix)
	api.Get("/health", health(cfg.Ready))

	if cfg.Gate != nil {
		cfg.Gate.RegisterRoutes(api)
		api.Use(cfg.Gate.Middleware())
	}
	for _, r := range routes {
		r.RegisterRoutes(api)
	}

	app.Use(func(c *fiber.Ctx) error {
		return response.Fail(c, fiber.StatusNotFound, "Route not found")
	})

	return app
}

func health(ready func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				return response.Fail(c, fiber.StatusServiceUnavailable, "Database unavailable")
			}
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	}
}

func errorHandler(log logger.ZapLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled request error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return response.Fail(c, code, message)
	}
}
