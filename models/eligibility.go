package models

import (
	"time"
)

// Violation severities, ordered by blocking weight. Only CRITICAL and HIGH
// block eligibility.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// Overall eligibility statuses.
const (
	StatusEligible      = "ELIGIBLE"
	StatusPendingReview = "PENDING_REVIEW"
	StatusNeedsAction   = "NEEDS_ACTION"
	StatusIneligible    = "INELIGIBLE"
)

// EligibilityViolation is a hard finding. CanOverride marks whether an
// administrator may waive it; the engine only flags overridability.
type EligibilityViolation struct {
	RuleID          string `json:"rule_id"`
	RuleName        string `json:"rule_name"`
	RuleType        string `json:"rule_type"`
	Reason          string `json:"reason"`
	Severity        string `json:"severity"`
	CanOverride     bool   `json:"can_override"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// EligibilityWarning is a soft finding. Warnings never block eligibility.
type EligibilityWarning struct {
	RuleID          string `json:"rule_id"`
	RuleName        string `json:"rule_name"`
	RuleType        string `json:"rule_type"`
	Message         string `json:"message"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// EligibilitySummary aggregates the check for display and decision support.
// The boolean flags are recomputed from raw player data, not derived from the
// violation list, so they reflect ground truth even when a rule was skipped.
type EligibilitySummary struct {
	OverallStatus         string   `json:"overall_status"`
	DocumentsVerified     bool     `json:"documents_verified"`
	ConsentsGranted       bool     `json:"consents_granted"`
	MedicalClearanceValid bool     `json:"medical_clearance_valid"`
	AgeEligible           bool     `json:"age_eligible"`
	GeographicEligible    bool     `json:"geographic_eligible"`
	NextSteps             []string `json:"next_steps"`
}

// EligibilityCheckResult is the full verdict for one player in one
// tournament. Serialized directly as the API response body.
type EligibilityCheckResult struct {
	PlayerID     string                 `json:"player_id"`
	TournamentID string                 `json:"tournament_id"`
	IsEligible   bool                   `json:"is_eligible"`
	Violations   []EligibilityViolation `json:"violations"`
	Warnings     []EligibilityWarning   `json:"warnings"`
	Summary      EligibilitySummary     `json:"summary"`
	CheckedAt    time.Time              `json:"checked_at"`
}

// LegacyEligibilityResult is the pre-engine response shape, kept for callers
// not yet migrated to the full check.
type LegacyEligibilityResult struct {
	PlayerID     string   `json:"player_id"`
	TournamentID string   `json:"tournament_id"`
	Eligible     bool     `json:"eligible"`
	Reasons      []string `json:"reasons"`
}

// EligibilityOverride records an administrative waiver of an overridable
// violation. The engine never consults overrides; it only flags them.
type EligibilityOverride struct {
	ID           string `json:"id" gorm:"primaryKey;type:uuid"`
	TournamentID string `json:"tournament_id" gorm:"not null;index"`
	PlayerID     string `json:"player_id" gorm:"not null;index"`
	RuleID       string `json:"rule_id" gorm:"not null"`
	Reason       string `json:"reason" gorm:"type:text;not null"`
	ApprovedBy   string `json:"approved_by" gorm:"not null"`

	Timestamps
}
