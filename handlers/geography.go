package handlers

import (
	"league-management-system/middleware"
	"league-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGeographyRoutes(app *fiber.App, geographyService *services.GeographyService) {
	app.Get("/counties", geographyService.GetCounties)
	app.Get("/sub-counties", geographyService.GetSubCounties)
	app.Get("/wards", geographyService.GetWards)

	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/admin/geography/seed", geographyService.SeedGeography)
}
