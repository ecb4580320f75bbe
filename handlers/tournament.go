package handlers

import (
	"league-management-system/middleware"
	"league-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// Public listing of tournaments
	app.Get("/tournaments", tournamentService.GetAllTournaments)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)

	secured := app.Group("/", middleware.UserContextMiddleware())
	admin := secured.Group("/admin")
	admin.Post("/tournaments", tournamentService.CreateTournament)
	admin.Patch("/tournaments/:id/status", tournamentService.UpdateTournamentStatus)
	admin.Delete("/tournaments/:id", tournamentService.DeleteTournament)
}
