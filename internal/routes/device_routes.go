package routes

import (
	"id-collector-api/internal/handler"
	"id-collector-api/internal/middleware"
	"id-collector-api/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupDeviceRoutes(app *fiber.App, db *gorm.DB, maxListLimit int) {
	hdl := handler.NewDeviceHandler(repository.NewDeviceRepository, maxListLimit)

	api := app.Group("/api", middleware.Session(db))
	api.Post("/store-ids", hdl.Store)
	api.Get("/all-ids", hdl.GetAll)
	api.Get("/get-ids/:android_id", hdl.GetByAndroidID)
}

func SetupHealthRoutes(app *fiber.App, db *gorm.DB) {
	hdl := handler.NewHealthHandler(db)
	app.Get("/health", hdl.Check)
}
