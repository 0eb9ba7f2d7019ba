// Package app assembles the fiber application served by the API
package app

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/talentpad/presale/internal/api/middleware"
	"github.com/talentpad/presale/internal/services"
	"github.com/talentpad/presale/pkg/api/v1/handlers"
	"github.com/talentpad/presale/pkg/api/v1/routes"
)

// AllowedHeaders are the request headers the web client sends
const AllowedHeaders = "authorization,x-client-info,apikey,content-type"

// Options configures the HTTP application
type Options struct {
	// CORSAllowOrigins is a comma separated list of allowed origins
	CORSAllowOrigins string
}

// Services bundles the domain services behind the API
type Services struct {
	Talent   *services.Talent
	Presale  *services.Presale
	Position *services.Position
	Deposit  *services.Deposit
}

// NewApp creates the fiber app with middleware and every v1 route registered
func NewApp(opts Options, svcs Services) *fiber.App {
	if opts.CORSAllowOrigins == "" {
		opts.CORSAllowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               "presale",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(middleware.Logger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSAllowOrigins,
		AllowHeaders: AllowedHeaders,
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	api := handlers.NewAPIHandler(svcs.Talent, svcs.Presale, svcs.Position, svcs.Deposit)
	routes.RegisterRoutes(app,
		handlers.NewDepositHandler(api),
		handlers.NewTalentHandler(api),
		handlers.NewPresaleHandler(api),
		handlers.NewPositionHandler(api),
	)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
