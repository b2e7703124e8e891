// Package server assembles the HTTP surface of the store.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wichananm65/digital-store-backend/internal/auth"
	"github.com/wichananm65/digital-store-backend/internal/category"
	"github.com/wichananm65/digital-store-backend/internal/logging"
	"github.com/wichananm65/digital-store-backend/internal/product"
	"github.com/wichananm65/digital-store-backend/internal/user"
	"github.com/wichananm65/digital-store-backend/internal/web"
)

// Deps is everything the server needs. Ping is optional and backs /health.
type Deps struct {
	Logger      zerolog.Logger
	Credentials *auth.Credentials
	Categories  category.Repository
	Products    product.Repository
	Users       user.Repository
	CORSOrigins string
	Ping        func(context.Context) error
}

// New wires services and handlers onto a Fiber app. Public routes are
// registered first; everything after the Auth Gate requires a bearer token.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "digital-store",
		ErrorHandler: web.ErrorHandler(logging.Named(d.Logger, "http")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	origins := d.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logging.Requests(logging.Named(d.Logger, "access")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	categoryHandler := category.NewHandler(category.NewService(d.Categories))
	productHandler := product.NewHandler(product.NewService(d.Products))
	userHandler := user.NewHandler(user.NewService(d.Users, d.Credentials))

	app.Get("/health", health(d.Ping))
	categoryHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	userHandler.RegisterPublicRoutes(app)

	app.Use(d.Credentials.Gate())

	categoryHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	userHandler.RegisterProtectedRoutes(app)

	return app
}

func health(ping func(context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
