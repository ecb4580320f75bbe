package handlers

import (
	"league-management-system/middleware"
	"league-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Registration lifecycle
	secured.Post("/players", playerService.RegisterPlayer)
	secured.Get("/players", playerService.SearchPlayers)
	secured.Get("/players/:id", playerService.GetPlayer)
	secured.Post("/players/:id/submit", playerService.SubmitRegistration)

	// Documents & consents
	secured.Post("/players/:id/documents", playerService.UploadDocument)
	secured.Get("/players/:id/documents", playerService.GetPlayerDocuments)
	secured.Post("/players/:id/consents", playerService.RecordConsent)
	secured.Get("/players/:id/consents", playerService.GetPlayerConsents)

	// Admin review workflows
	admin := secured.Group("/admin")
	admin.Post("/players/:id/review", playerService.ReviewRegistration)
	admin.Patch("/documents/:document_id/review", playerService.ReviewDocument)
	admin.Patch("/players/:id/medical", playerService.UpdateMedicalClearance)
	admin.Patch("/players/:id/status", playerService.UpdatePlayerStatus)
}
