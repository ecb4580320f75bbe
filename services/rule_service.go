package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"league-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleService struct {
	DB *gorm.DB
}

func NewRuleService(db *gorm.DB) *RuleService {
	return &RuleService{DB: db}
}

// CreateRule creates a tournament-scoped eligibility rule. The config payload
// is validated against the declared rule type here, at write time, so the
// evaluator never sees a malformed payload for a known type.
func (s *RuleService) CreateRule(c *fiber.Ctx) error {
	type Req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		RuleType    string          `json:"rule_type"`
		Config      json.RawMessage `json:"config"`
		IsActive    *bool           `json:"is_active"`
		Priority    int             `json:"priority"`
	}
	tournamentID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Name == "" || req.RuleType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and rule_type are required"})
	}

	if err := s.DB.First(&models.Tournament{}, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	if err := ValidateRuleConfig(req.RuleType, req.Config); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	rule := models.EligibilityRule{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Name:         req.Name,
		Description:  req.Description,
		RuleType:     req.RuleType,
		Config:       req.Config,
		IsActive:     isActive,
		Priority:     req.Priority,
	}
	if userID, ok := c.Locals("user_id").(string); ok {
		rule.CreatedBy = userID
	}
	if err := s.DB.Create(&rule).Error; err != nil {
		log.Printf("ERROR creating eligibility rule for tournament %s: %v", tournamentID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create rule"})
	}
	return c.Status(201).JSON(rule)
}

func (s *RuleService) GetTournamentRules(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	query := s.DB.Where("tournament_id = ?", tournamentID)
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	var rules []models.EligibilityRule
	if err := query.Order("priority ASC, created_at ASC").Find(&rules).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch rules"})
	}
	return c.JSON(rules)
}

func (s *RuleService) GetRule(c *fiber.Ctx) error {
	var rule models.EligibilityRule
	if err := s.DB.First(&rule, "id = ?", c.Params("rule_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "rule not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(rule)
}

func (s *RuleService) UpdateRule(c *fiber.Ctx) error {
	type Req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Config      json.RawMessage `json:"config"`
		Priority    *int            `json:"priority"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var rule models.EligibilityRule
	if err := s.DB.First(&rule, "id = ?", c.Params("rule_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "rule not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	// The rule type is immutable; replacing the config re-validates against
	// the existing type.
	if len(req.Config) > 0 {
		if err := ValidateRuleConfig(rule.RuleType, req.Config); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		rule.Config = req.Config
	}
	if req.Name != "" {
		rule.Name = req.Name
	}
	if req.Description != "" {
		rule.Description = req.Description
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if err := s.DB.Save(&rule).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(rule)
}

func (s *RuleService) UpdateRuleStatus(c *fiber.Ctx) error {
	type Req struct {
		IsActive *bool `json:"is_active"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return c.Status(400).JSON(fiber.Map{"error": "is_active is required"})
	}
	result := s.DB.Model(&models.EligibilityRule{}).
		Where("id = ?", c.Params("rule_id")).
		Update("is_active", *req.IsActive)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "rule not found"})
	}
	return c.JSON(fiber.Map{"message": "rule status updated", "is_active": *req.IsActive})
}

func (s *RuleService) DeleteRule(c *fiber.Ctx) error {
	result := s.DB.Delete(&models.EligibilityRule{}, "id = ?", c.Params("rule_id"))
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "rule not found"})
	}
	return c.JSON(fiber.Map{"message": "rule deleted"})
}

// ValidateRuleConfig rejects a config payload that does not fit the declared
// rule type. Malformed configs are a write-time error, not a silent skip at
// evaluation time.
func ValidateRuleConfig(ruleType string, config json.RawMessage) error {
	if len(config) == 0 {
		return fmt.Errorf("config is required for rule type %s", ruleType)
	}
	switch ruleType {
	case models.RuleAgeRange:
		var cfg models.AgeRangeConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("invalid AGE_RANGE config: %v", err)
		}
		if cfg.AgeCalculationDate == "" {
			return errors.New("AGE_RANGE config requires age_calculation_date")
		}
		if _, err := time.Parse("2006-01-02", cfg.AgeCalculationDate); err != nil {
			return errors.New("age_calculation_date must use format 2006-01-02")
		}
		if cfg.MinAge == nil && cfg.MaxAge == nil {
			return errors.New("AGE_RANGE config requires min_age or max_age")
		}
		if cfg.MinAge != nil && *cfg.MinAge < 0 {
			return errors.New("min_age must be non-negative")
		}
		if cfg.MaxAge != nil && *cfg.MaxAge < 0 {
			return errors.New("max_age must be non-negative")
		}
		if cfg.MinAge != nil && cfg.MaxAge != nil && *cfg.MinAge > *cfg.MaxAge {
			return errors.New("min_age must not exceed max_age")
		}
	case models.RuleGeographic:
		var cfg models.GeographicConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("invalid GEOGRAPHIC config: %v", err)
		}
		switch cfg.Scope {
		case models.ScopeWard, models.ScopeSubCounty, models.ScopeCounty:
		default:
			return errors.New("scope must be one of WARD, SUBCOUNTY, COUNTY")
		}
		if len(cfg.AllowedIDs) == 0 {
			return errors.New("GEOGRAPHIC config requires non-empty allowed_ids")
		}
	case models.RulePlayerStatus:
		var cfg models.PlayerStatusConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("invalid PLAYER_STATUS config: %v", err)
		}
		if len(cfg.AllowedStatuses) == 0 {
			return errors.New("PLAYER_STATUS config requires non-empty allowed_statuses")
		}
	case models.RuleDocumentRequirement:
		var cfg models.DocumentRequirementConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("invalid DOCUMENT_REQUIREMENT config: %v", err)
		}
		if len(cfg.RequiredDocuments) == 0 {
			return errors.New("DOCUMENT_REQUIREMENT config requires non-empty required_documents")
		}
		for _, t := range cfg.RequiredDocuments {
			if !models.KnownDocumentTypes[t] {
				return fmt.Errorf("unknown document type %q", t)
			}
		}
	case models.RuleConsentRequirement:
		var cfg models.ConsentRequirementConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("invalid CONSENT_REQUIREMENT config: %v", err)
		}
		if len(cfg.RequiredConsents) == 0 {
			return errors.New("CONSENT_REQUIREMENT config requires non-empty required_consents")
		}
		for _, t := range cfg.RequiredConsents {
			if !models.KnownConsentTypes[t] {
				return fmt.Errorf("unknown consent type %q", t)
			}
		}
	case models.RuleGenderRestriction:
		var cfg models.GenderRestrictionConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("invalid GENDER_RESTRICTION config: %v", err)
		}
		if len(cfg.AllowedGenders) == 0 {
			return errors.New("GENDER_RESTRICTION config requires non-empty allowed_genders")
		}
	case models.RuleMedicalRequirement:
		var cfg models.MedicalRequirementConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("invalid MEDICAL_REQUIREMENT config: %v", err)
		}
		if cfg.MaxMedicalAgeDays != nil && *cfg.MaxMedicalAgeDays <= 0 {
			return errors.New("max_medical_age_days must be positive")
		}
	default:
		return fmt.Errorf("unknown rule type %q", ruleType)
	}
	return nil
}
