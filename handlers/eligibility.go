package handlers

import (
	"league-management-system/middleware"
	"league-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEligibilityRoutes(app *fiber.App, eligibilityService *services.EligibilityService, ruleService *services.RuleService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Eligibility checks
	secured.Get("/tournaments/:id/eligibility/:player_id", eligibilityService.GetPlayerEligibility)
	secured.Post("/tournaments/:id/eligibility/batch", eligibilityService.BatchCheckEligibility)

	// Legacy evaluation, kept for callers not yet migrated to the full check
	secured.Get("/tournaments/:id/eligibility-legacy/:player_id", eligibilityService.GetPlayerEligibilityLegacy)

	// Rule management (tournament administrators)
	admin := secured.Group("/admin")
	admin.Post("/tournaments/:id/rules", ruleService.CreateRule)
	admin.Get("/tournaments/:id/rules", ruleService.GetTournamentRules)
	admin.Get("/tournaments/:id/rules/:rule_id", ruleService.GetRule)
	admin.Put("/tournaments/:id/rules/:rule_id", ruleService.UpdateRule)
	admin.Patch("/tournaments/:id/rules/:rule_id/status", ruleService.UpdateRuleStatus)
	admin.Delete("/tournaments/:id/rules/:rule_id", ruleService.DeleteRule)

	// Violation overrides (audit trail of admin waivers)
	admin.Post("/tournaments/:id/overrides", eligibilityService.CreateOverride)
	admin.Get("/tournaments/:id/overrides", eligibilityService.GetOverrides)
}
