package services

import (
	"errors"
	"log"
	"strings"

	"league-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPlayerEligibility runs the full eligibility check for one player in one
// tournament. Ineligibility is a 200 response; only infrastructure failure
// is an error status.
func (s *EligibilityService) GetPlayerEligibility(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	playerID := c.Params("player_id")
	if tournamentID == "" || playerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "tournament id and player_id are required in URL"})
	}

	result, err := s.CheckEligibility(playerID, tournamentID)
	if err != nil {
		log.Printf("ERROR eligibility check for player %s in tournament %s: %v", playerID, tournamentID, err)
		return c.Status(500).JSON(fiber.Map{"error": "eligibility check failed"})
	}
	return c.JSON(result)
}

// BatchCheckEligibility evaluates a list of players against one tournament.
// Used by the registration desk to vet a whole team at once.
func (s *EligibilityService) BatchCheckEligibility(c *fiber.Ctx) error {
	type Req struct {
		PlayerIDs []string `json:"player_ids"`
	}
	tournamentID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if len(req.PlayerIDs) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "player_ids must not be empty"})
	}
	if len(req.PlayerIDs) > 100 {
		return c.Status(400).JSON(fiber.Map{"error": "at most 100 players per batch"})
	}

	results := make([]*models.EligibilityCheckResult, 0, len(req.PlayerIDs))
	for _, playerID := range req.PlayerIDs {
		result, err := s.CheckEligibility(playerID, tournamentID)
		if err != nil {
			log.Printf("ERROR batch eligibility check for player %s: %v", playerID, err)
			return c.Status(500).JSON(fiber.Map{"error": "eligibility check failed", "player_id": playerID})
		}
		results = append(results, result)
	}

	eligible := 0
	for _, r := range results {
		if r.IsEligible {
			eligible++
		}
	}
	return c.JSON(fiber.Map{
		"tournament_id":  tournamentID,
		"checked":        len(results),
		"eligible_count": eligible,
		"results":        results,
	})
}

// GetPlayerEligibilityLegacy serves the pre-engine response shape for
// callers that have not migrated yet.
func (s *EligibilityService) GetPlayerEligibilityLegacy(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	playerID := c.Params("player_id")

	result, err := s.CheckPlayerEligibility(playerID, tournamentID)
	if err != nil {
		log.Printf("ERROR legacy eligibility check for player %s: %v", playerID, err)
		return c.Status(500).JSON(fiber.Map{"error": "eligibility check failed"})
	}
	return c.JSON(result)
}

// CreateOverride records an administrative waiver for an overridable
// violation. The engine itself never consults overrides; this is an audit
// trail for the admin decision.
func (s *EligibilityService) CreateOverride(c *fiber.Ctx) error {
	type Req struct {
		PlayerID   string `json:"player_id"`
		RuleID     string `json:"rule_id"`
		Reason     string `json:"reason"`
		ApprovedBy string `json:"approved_by"`
	}
	tournamentID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.PlayerID == "" || req.RuleID == "" || req.Reason == "" || req.ApprovedBy == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id, rule_id, reason and approved_by are required"})
	}

	// Baseline findings carry fixed rule ids (REG_STATUS_*, DOC_*,
	// CONSENT_*, MEDICAL_*); only configured rule ids are validated against
	// the store.
	if !isBaselineRuleID(req.RuleID) {
		var rule models.EligibilityRule
		err := s.DB.First(&rule, "id = ? AND tournament_id = ?", req.RuleID, tournamentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(400).JSON(fiber.Map{"error": "rule_id not found in this tournament"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error"})
		}
	}

	override := models.EligibilityOverride{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		PlayerID:     req.PlayerID,
		RuleID:       req.RuleID,
		Reason:       req.Reason,
		ApprovedBy:   req.ApprovedBy,
	}
	if err := s.DB.Create(&override).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create override"})
	}
	return c.Status(201).JSON(override)
}

func isBaselineRuleID(id string) bool {
	for _, prefix := range []string{"REG_STATUS_", "DOC_", "CONSENT_", "MEDICAL_"} {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// GetOverrides lists recorded overrides for a tournament, optionally
// filtered by player.
func (s *EligibilityService) GetOverrides(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	query := s.DB.Where("tournament_id = ?", tournamentID)
	if playerID := c.Query("player_id"); playerID != "" {
		query = query.Where("player_id = ?", playerID)
	}
	var overrides []models.EligibilityOverride
	if err := query.Order("created_at DESC").Find(&overrides).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch overrides"})
	}
	return c.JSON(overrides)
}
