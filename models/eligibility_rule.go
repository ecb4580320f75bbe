package models

import (
	"encoding/json"
)

// Rule types an administrator can configure per tournament.
const (
	RuleAgeRange            = "AGE_RANGE"
	RuleGeographic          = "GEOGRAPHIC"
	RulePlayerStatus        = "PLAYER_STATUS"
	RuleDocumentRequirement = "DOCUMENT_REQUIREMENT"
	RuleConsentRequirement  = "CONSENT_REQUIREMENT"
	RuleGenderRestriction   = "GENDER_RESTRICTION"
	RuleMedicalRequirement  = "MEDICAL_REQUIREMENT"
)

// Geographic scopes for GEOGRAPHIC rules.
const (
	ScopeWard      = "WARD"
	ScopeSubCounty = "SUBCOUNTY"
	ScopeCounty    = "COUNTY"
)

// EligibilityRule is a tournament-scoped, admin-configured constraint.
// Config carries the type-specific payload; its shape is validated against
// RuleType when the rule is created or updated, so the engine can assume a
// well-formed payload for known types.
type EligibilityRule struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	TournamentID string          `json:"tournament_id" gorm:"not null;index"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	RuleType     string          `json:"rule_type" gorm:"type:varchar(32);not null"`
	Config       json.RawMessage `json:"config" gorm:"type:jsonb;not null"`
	IsActive     bool            `json:"is_active" gorm:"default:true;index"`
	Priority     int             `json:"priority" gorm:"default:0"`
	CreatedBy    string          `json:"created_by,omitempty"`

	Timestamps
}

// AgeRangeConfig bounds the player's age, computed in whole years at
// AgeCalculationDate (layout 2006-01-02). Both bounds are optional and
// checked independently.
type AgeRangeConfig struct {
	MinAge             *int   `json:"min_age,omitempty"`
	MaxAge             *int   `json:"max_age,omitempty"`
	AgeCalculationDate string `json:"age_calculation_date"`
}

// GeographicConfig restricts the player's resolved identifier at Scope to
// AllowedIDs.
type GeographicConfig struct {
	Scope      string   `json:"scope"`
	AllowedIDs []string `json:"allowed_ids"`
}

type PlayerStatusConfig struct {
	AllowedStatuses []string `json:"allowed_statuses"`
}

type DocumentRequirementConfig struct {
	RequiredDocuments []string `json:"required_documents"`
}

type ConsentRequirementConfig struct {
	RequiredConsents []string `json:"required_consents"`
}

type GenderRestrictionConfig struct {
	AllowedGenders []string `json:"allowed_genders"`
}

// MedicalRequirementConfig demands a VALID clearance and, optionally, one no
// older than MaxMedicalAgeDays at evaluation time.
type MedicalRequirementConfig struct {
	RequireValidMedical bool `json:"require_valid_medical"`
	MaxMedicalAgeDays   *int `json:"max_medical_age_days,omitempty"`
}
