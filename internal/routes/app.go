package routes

import (
	"errors"

	"id-collector-api/internal/middleware"
	"id-collector-api/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options carries what NewApp needs besides the store.
type Options struct {
	AppName      string
	MaxListLimit int
	Logger       zerolog.Logger
}

// NewApp wires middleware and every route of the service.
func NewApp(db *gorm.DB, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New()) // any origin, the collector is called straight from devices
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(opts.Logger))

	SetupHealthRoutes(app, db)
	SetupDeviceRoutes(app, db, opts.MaxListLimit)

	return app
}

// ErrorHandler renders framework errors (unknown route, bad method, panics)
// with the same envelope the handlers use.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(model.Fail(err.Error()))
}
