package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"league-management-system/models"

	"gorm.io/gorm"
)

type EligibilityService struct {
	DB *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{DB: db}
}

// playerSnapshot is everything the evaluators need, fetched once up front.
// The fetches are not wrapped in a transaction: the source of truth can
// change between check and use anyway, so read skew is accepted.
type playerSnapshot struct {
	Player    models.Player
	Documents []models.PlayerDocument
	Consents  []models.PlayerConsent
}

// CheckEligibility evaluates whether a player may participate in a
// tournament. Domain ineligibility (including an unknown player) is always
// expressed in the returned result, never as an error; an error return means
// the data store failed.
func (s *EligibilityService) CheckEligibility(playerID, tournamentID string) (*models.EligibilityCheckResult, error) {
	var player models.Player
	err := s.DB.Preload("Ward.SubCounty.County").
		First(&player, "id = ? OR upid = ?", playerID, playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return playerNotFoundResult(playerID, tournamentID), nil
	}
	if err != nil {
		return nil, err
	}

	var documents []models.PlayerDocument
	if err := s.DB.Where("player_id = ?", player.ID).Find(&documents).Error; err != nil {
		return nil, err
	}

	var consents []models.PlayerConsent
	if err := s.DB.Where("player_id = ?", player.ID).Find(&consents).Error; err != nil {
		return nil, err
	}

	var rules []models.EligibilityRule
	if err := s.DB.Where("tournament_id = ? AND is_active = ?", tournamentID, true).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}

	snap := &playerSnapshot{Player: player, Documents: documents, Consents: consents}
	now := time.Now()

	violations := []models.EligibilityViolation{}
	warnings := []models.EligibilityWarning{}

	collect := func(v *models.EligibilityViolation, w *models.EligibilityWarning) {
		if v != nil {
			violations = append(violations, *v)
		}
		if w != nil {
			warnings = append(warnings, *w)
		}
	}

	// Baseline checks always run, independent of the tournament's rule set.
	collect(checkRegistrationStatus(snap))
	collect(checkDocuments(snap))
	collect(checkConsents(snap))
	collect(checkMedicalClearance(snap, now))

	for _, rule := range rules {
		if v := evaluateRule(rule, snap, now); v != nil {
			violations = append(violations, *v)
		}
	}

	summary := buildSummary(snap, violations, warnings, now)

	return &models.EligibilityCheckResult{
		PlayerID:     player.ID,
		TournamentID: tournamentID,
		IsEligible:   !hasBlockingViolation(violations),
		Violations:   violations,
		Warnings:     warnings,
		Summary:      summary,
		CheckedAt:    now,
	}, nil
}

// CheckPlayerEligibility is the legacy evaluation, superseded by
// CheckEligibility but kept for callers that still consume the flat shape.
func (s *EligibilityService) CheckPlayerEligibility(playerID, tournamentID string) (*models.LegacyEligibilityResult, error) {
	result, err := s.CheckEligibility(playerID, tournamentID)
	if err != nil {
		return nil, err
	}
	reasons := []string{}
	for _, v := range result.Violations {
		reasons = append(reasons, v.Reason)
	}
	for _, w := range result.Warnings {
		reasons = append(reasons, w.Message)
	}
	return &models.LegacyEligibilityResult{
		PlayerID:     result.PlayerID,
		TournamentID: tournamentID,
		Eligible:     result.IsEligible,
		Reasons:      reasons,
	}, nil
}

func playerNotFoundResult(playerID, tournamentID string) *models.EligibilityCheckResult {
	return &models.EligibilityCheckResult{
		PlayerID:     playerID,
		TournamentID: tournamentID,
		IsEligible:   false,
		Violations: []models.EligibilityViolation{{
			RuleID:      "PLAYER_NOT_FOUND",
			RuleName:    "Player Not Found",
			RuleType:    "SYSTEM",
			Reason:      "No player record matches the given identifier",
			Severity:    models.SeverityCritical,
			CanOverride: false,
		}},
		Warnings: []models.EligibilityWarning{},
		Summary: models.EligibilitySummary{
			OverallStatus: models.StatusIneligible,
			NextSteps:     []string{},
		},
		CheckedAt: time.Now(),
	}
}

// ---- Baseline checks ----
// Each check returns at most one violation or one warning, never both.

func checkRegistrationStatus(snap *playerSnapshot) (*models.EligibilityViolation, *models.EligibilityWarning) {
	switch snap.Player.RegistrationStatus {
	case models.RegistrationApproved:
		return nil, nil
	case models.RegistrationInReview:
		return nil, &models.EligibilityWarning{
			RuleID:          "REG_STATUS_REVIEW",
			RuleName:        "Registration Status",
			RuleType:        "REGISTRATION_STATUS",
			Message:         "Registration is under review; participation is provisional",
			SuggestedAction: "Complete registration approval",
		}
	case models.RegistrationDraft, models.RegistrationSubmitted:
		return &models.EligibilityViolation{
			RuleID:          "REG_STATUS_INCOMPLETE",
			RuleName:        "Registration Status",
			RuleType:        "REGISTRATION_STATUS",
			Reason:          "Registration is incomplete and must be approved before participation",
			Severity:        models.SeverityHigh,
			CanOverride:     false,
			SuggestedAction: "Complete registration approval",
		}, nil
	case models.RegistrationRejected:
		return &models.EligibilityViolation{
			RuleID:      "REG_STATUS_REJECTED",
			RuleName:    "Registration Status",
			RuleType:    "REGISTRATION_STATUS",
			Reason:      "Registration has been rejected",
			Severity:    models.SeverityCritical,
			CanOverride: false,
		}, nil
	case models.RegistrationSuspended:
		return &models.EligibilityViolation{
			RuleID:          "REG_STATUS_SUSPENDED",
			RuleName:        "Registration Status",
			RuleType:        "REGISTRATION_STATUS",
			Reason:          "Player is currently suspended",
			Severity:        models.SeverityCritical,
			CanOverride:     true,
			SuggestedAction: "Request an administrative review of the suspension",
		}, nil
	case models.RegistrationIncomplete:
		return &models.EligibilityViolation{
			RuleID:          "REG_STATUS_INCOMPLETE",
			RuleName:        "Registration Status",
			RuleType:        "REGISTRATION_STATUS",
			Reason:          "Registration is incomplete and must be approved before participation",
			Severity:        models.SeverityHigh,
			CanOverride:     false,
			SuggestedAction: "Complete registration approval",
		}, nil
	default:
		// Persisted value not in the enum, treat as blocking rather than
		// guessing.
		return &models.EligibilityViolation{
			RuleID:      "REG_STATUS_UNKNOWN",
			RuleName:    "Registration Status",
			RuleType:    "REGISTRATION_STATUS",
			Reason:      fmt.Sprintf("Unknown registration status %q", snap.Player.RegistrationStatus),
			Severity:    models.SeverityCritical,
			CanOverride: false,
		}, nil
	}
}

// checkDocuments walks a priority ladder: missing uploads, then pending
// verification, then rejected documents. Only the first matching condition
// fires.
func checkDocuments(snap *playerSnapshot) (*models.EligibilityViolation, *models.EligibilityWarning) {
	byType := map[string][]models.PlayerDocument{}
	for _, d := range snap.Documents {
		byType[d.DocumentType] = append(byType[d.DocumentType], d)
	}

	var missing, pending []string
	for _, required := range models.RequiredDocumentTypes {
		docs := byType[required]
		if len(docs) == 0 {
			missing = append(missing, required)
			continue
		}
		verified := false
		for _, d := range docs {
			if d.VerificationStatus == models.VerificationVerified {
				verified = true
				break
			}
		}
		if !verified {
			pending = append(pending, required)
		}
	}

	if len(missing) > 0 {
		return &models.EligibilityViolation{
			RuleID:          "DOC_MISSING",
			RuleName:        "Document Verification",
			RuleType:        "DOCUMENT_VERIFICATION",
			Reason:          "Missing required documents: " + strings.Join(missing, ", "),
			Severity:        models.SeverityHigh,
			CanOverride:     false,
			SuggestedAction: "Complete document verification",
		}, nil
	}
	if len(pending) > 0 {
		return nil, &models.EligibilityWarning{
			RuleID:          "DOC_PENDING",
			RuleName:        "Document Verification",
			RuleType:        "DOCUMENT_VERIFICATION",
			Message:         "Documents pending verification: " + strings.Join(pending, ", "),
			SuggestedAction: "Complete document verification",
		}
	}

	// Any rejected document of any type blocks, even optional ones.
	rejectedSet := map[string]bool{}
	for _, d := range snap.Documents {
		if d.VerificationStatus == models.VerificationRejected {
			rejectedSet[d.DocumentType] = true
		}
	}
	if len(rejectedSet) > 0 {
		rejected := make([]string, 0, len(rejectedSet))
		for t := range rejectedSet {
			rejected = append(rejected, t)
		}
		sort.Strings(rejected)
		return &models.EligibilityViolation{
			RuleID:          "DOC_REJECTED",
			RuleName:        "Document Verification",
			RuleType:        "DOCUMENT_VERIFICATION",
			Reason:          "Rejected documents: " + strings.Join(rejected, ", "),
			Severity:        models.SeverityHigh,
			CanOverride:     false,
			SuggestedAction: "Re-upload the rejected documents",
		}, nil
	}
	return nil, nil
}

func checkConsents(snap *playerSnapshot) (*models.EligibilityViolation, *models.EligibilityWarning) {
	missing := missingConsents(snap.Consents, models.RequiredConsentTypes)
	if len(missing) > 0 {
		return &models.EligibilityViolation{
			RuleID:          "CONSENT_MISSING",
			RuleName:        "Consent Verification",
			RuleType:        "CONSENT_VERIFICATION",
			Reason:          "Missing required consents: " + strings.Join(missing, ", "),
			Severity:        models.SeverityHigh,
			CanOverride:     false,
			SuggestedAction: "Grant required consents",
		}, nil
	}
	return nil, nil
}

// checkMedicalClearance is evaluated top to bottom; the first matching row
// wins.
func checkMedicalClearance(snap *playerSnapshot, now time.Time) (*models.EligibilityViolation, *models.EligibilityWarning) {
	p := snap.Player
	switch {
	case p.MedicalClearanceStatus == models.MedicalPending:
		return nil, &models.EligibilityWarning{
			RuleID:          "MEDICAL_PENDING",
			RuleName:        "Medical Clearance",
			RuleType:        "MEDICAL_CLEARANCE",
			Message:         "Medical clearance is pending review",
			SuggestedAction: "Obtain valid medical clearance",
		}
	case p.MedicalClearanceStatus == models.MedicalRejected:
		return &models.EligibilityViolation{
			RuleID:          "MEDICAL_REJECTED",
			RuleName:        "Medical Clearance",
			RuleType:        "MEDICAL_CLEARANCE",
			Reason:          "Medical clearance was rejected",
			Severity:        models.SeverityHigh,
			CanOverride:     true,
			SuggestedAction: "Obtain valid medical clearance",
		}, nil
	case p.MedicalClearanceStatus == models.MedicalExpired,
		p.MedicalExpiryDate != nil && p.MedicalExpiryDate.Before(now):
		return &models.EligibilityViolation{
			RuleID:          "MEDICAL_EXPIRED",
			RuleName:        "Medical Clearance",
			RuleType:        "MEDICAL_CLEARANCE",
			Reason:          "Medical clearance has expired",
			Severity:        models.SeverityHigh,
			CanOverride:     false,
			SuggestedAction: "Obtain valid medical clearance",
		}, nil
	default:
		return nil, nil
	}
}

// ---- Configurable rule evaluation ----
// Evaluators are pure functions of (rule config, snapshot, now). Each
// produces zero or one violation; configurable rules never warn.

func evaluateRule(rule models.EligibilityRule, snap *playerSnapshot, now time.Time) *models.EligibilityViolation {
	switch rule.RuleType {
	case models.RuleAgeRange:
		return evaluateAgeRange(rule, snap)
	case models.RuleGeographic:
		return evaluateGeographic(rule, snap)
	case models.RulePlayerStatus:
		return evaluatePlayerStatus(rule, snap)
	case models.RuleDocumentRequirement:
		return evaluateDocumentRequirement(rule, snap)
	case models.RuleConsentRequirement:
		return evaluateConsentRequirement(rule, snap)
	case models.RuleGenderRestriction:
		return evaluateGenderRestriction(rule, snap)
	case models.RuleMedicalRequirement:
		return evaluateMedicalRequirement(rule, snap, now)
	default:
		// Unknown rule types are a forward-compatible no-op.
		return nil
	}
}

// ageInYears computes whole years between dob and at, as
// floor(elapsed / 365.25 days).
func ageInYears(dob, at time.Time) int {
	return int(at.Sub(dob).Hours() / 24 / 365.25)
}

func evaluateAgeRange(rule models.EligibilityRule, snap *playerSnapshot) *models.EligibilityViolation {
	var cfg models.AgeRangeConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		return nil
	}
	if snap.Player.DateOfBirth == nil {
		return ruleViolation(rule, "Player date of birth is not set",
			models.SeverityHigh, false, "Update the player's date of birth")
	}
	calcDate, err := time.Parse("2006-01-02", cfg.AgeCalculationDate)
	if err != nil {
		// A missing calculation date means no age can be computed; treated as
		// no constraint (legacy rows; new writes are validated).
		return nil
	}
	age := ageInYears(*snap.Player.DateOfBirth, calcDate)
	if cfg.MinAge != nil && age < *cfg.MinAge {
		return ruleViolation(rule,
			fmt.Sprintf("Player is %d years old, minimum age is %d", age, *cfg.MinAge),
			models.SeverityHigh, true, "Verify the player's date of birth or request an age override")
	}
	if cfg.MaxAge != nil && age > *cfg.MaxAge {
		return ruleViolation(rule,
			fmt.Sprintf("Player is %d years old, maximum age is %d", age, *cfg.MaxAge),
			models.SeverityHigh, true, "Verify the player's date of birth or request an age override")
	}
	return nil
}

func evaluateGeographic(rule models.EligibilityRule, snap *playerSnapshot) *models.EligibilityViolation {
	var cfg models.GeographicConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		return nil
	}

	var resolved string
	switch cfg.Scope {
	case models.ScopeWard:
		if snap.Player.WardID != nil {
			resolved = *snap.Player.WardID
		}
	case models.ScopeSubCounty:
		resolved = snap.Player.SubCountyID()
	case models.ScopeCounty:
		resolved = snap.Player.CountyID()
	default:
		return nil
	}

	if resolved == "" {
		return ruleViolation(rule,
			fmt.Sprintf("Player has no %s assignment", strings.ToLower(cfg.Scope)),
			models.SeverityHigh, false, "Assign the player to a ward")
	}
	for _, allowed := range cfg.AllowedIDs {
		if allowed == resolved {
			return nil
		}
	}
	return ruleViolation(rule,
		fmt.Sprintf("Player's %s is not within the allowed area for this tournament", strings.ToLower(cfg.Scope)),
		models.SeverityHigh, true, "Request a geographic override")
}

func evaluatePlayerStatus(rule models.EligibilityRule, snap *playerSnapshot) *models.EligibilityViolation {
	var cfg models.PlayerStatusConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		return nil
	}
	for _, allowed := range cfg.AllowedStatuses {
		if allowed == snap.Player.PlayerStatus {
			return nil
		}
	}
	return ruleViolation(rule,
		fmt.Sprintf("Player status %s is not permitted in this tournament", snap.Player.PlayerStatus),
		models.SeverityMedium, true, "Request a player status review")
}

func evaluateDocumentRequirement(rule models.EligibilityRule, snap *playerSnapshot) *models.EligibilityViolation {
	var cfg models.DocumentRequirementConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		return nil
	}
	verified := map[string]bool{}
	for _, d := range snap.Documents {
		if d.VerificationStatus == models.VerificationVerified {
			verified[d.DocumentType] = true
		}
	}
	var missing []string
	for _, required := range cfg.RequiredDocuments {
		if !verified[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return ruleViolation(rule,
			"Missing verified documents: "+strings.Join(missing, ", "),
			models.SeverityHigh, false, "Upload and verify: "+strings.Join(missing, ", "))
	}
	return nil
}

func evaluateConsentRequirement(rule models.EligibilityRule, snap *playerSnapshot) *models.EligibilityViolation {
	var cfg models.ConsentRequirementConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		return nil
	}
	missing := missingConsents(snap.Consents, cfg.RequiredConsents)
	if len(missing) > 0 {
		return ruleViolation(rule,
			"Missing required consents: "+strings.Join(missing, ", "),
			models.SeverityHigh, false, "Grant consents: "+strings.Join(missing, ", "))
	}
	return nil
}

func evaluateGenderRestriction(rule models.EligibilityRule, snap *playerSnapshot) *models.EligibilityViolation {
	var cfg models.GenderRestrictionConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		return nil
	}
	for _, allowed := range cfg.AllowedGenders {
		if allowed == snap.Player.Gender {
			return nil
		}
	}
	return ruleViolation(rule,
		"Player's gender does not meet the tournament restriction",
		models.SeverityHigh, false, "")
}

func evaluateMedicalRequirement(rule models.EligibilityRule, snap *playerSnapshot, now time.Time) *models.EligibilityViolation {
	var cfg models.MedicalRequirementConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		return nil
	}
	if !cfg.RequireValidMedical {
		return nil
	}
	if snap.Player.MedicalClearanceStatus != models.MedicalValid {
		return ruleViolation(rule,
			"A valid medical clearance is required for this tournament",
			models.SeverityHigh, false, "Obtain valid medical clearance")
	}
	// Freshness only applies once the clearance is VALID.
	if cfg.MaxMedicalAgeDays != nil && snap.Player.MedicalClearanceDate != nil {
		days := int(now.Sub(*snap.Player.MedicalClearanceDate).Hours() / 24)
		if days > *cfg.MaxMedicalAgeDays {
			return ruleViolation(rule,
				fmt.Sprintf("Medical clearance is %d days old, maximum allowed is %d", days, *cfg.MaxMedicalAgeDays),
				models.SeverityMedium, true, "Renew the medical clearance")
		}
	}
	return nil
}

func ruleViolation(rule models.EligibilityRule, reason, severity string, canOverride bool, suggested string) *models.EligibilityViolation {
	return &models.EligibilityViolation{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		RuleType:        rule.RuleType,
		Reason:          reason,
		Severity:        severity,
		CanOverride:     canOverride,
		SuggestedAction: suggested,
	}
}

func missingConsents(consents []models.PlayerConsent, required []string) []string {
	granted := map[string]bool{}
	for _, c := range consents {
		if c.Granted {
			granted[c.ConsentType] = true
		}
	}
	var missing []string
	for _, r := range required {
		if !granted[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

// ---- Summary aggregation ----

func hasBlockingViolation(violations []models.EligibilityViolation) bool {
	for _, v := range violations {
		if v.Severity == models.SeverityCritical || v.Severity == models.SeverityHigh {
			return true
		}
	}
	return false
}

func buildSummary(snap *playerSnapshot, violations []models.EligibilityViolation, warnings []models.EligibilityWarning, now time.Time) models.EligibilitySummary {
	summary := models.EligibilitySummary{
		DocumentsVerified:     documentsVerified(snap.Documents),
		ConsentsGranted:       len(missingConsents(snap.Consents, models.RequiredConsentTypes)) == 0,
		MedicalClearanceValid: medicalClearanceValid(&snap.Player, now),
		AgeEligible:           true,
		GeographicEligible:    true,
	}

	hasCritical, hasHigh := false, false
	for _, v := range violations {
		switch v.Severity {
		case models.SeverityCritical:
			hasCritical = true
		case models.SeverityHigh:
			hasHigh = true
		}
		switch v.RuleType {
		case models.RuleAgeRange:
			summary.AgeEligible = false
		case models.RuleGeographic:
			summary.GeographicEligible = false
		}
	}

	switch {
	case hasCritical:
		summary.OverallStatus = models.StatusIneligible
	case hasHigh:
		summary.OverallStatus = models.StatusNeedsAction
	case len(warnings) > 0:
		summary.OverallStatus = models.StatusPendingReview
	default:
		summary.OverallStatus = models.StatusEligible
	}

	summary.NextSteps = buildNextSteps(snap, summary, violations)
	return summary
}

func documentsVerified(documents []models.PlayerDocument) bool {
	verified := map[string]bool{}
	for _, d := range documents {
		if d.VerificationStatus == models.VerificationVerified {
			verified[d.DocumentType] = true
		}
	}
	for _, required := range models.RequiredDocumentTypes {
		if !verified[required] {
			return false
		}
	}
	return true
}

func medicalClearanceValid(p *models.Player, now time.Time) bool {
	if p.MedicalClearanceStatus != models.MedicalValid {
		return false
	}
	return p.MedicalExpiryDate == nil || p.MedicalExpiryDate.After(now)
}

// buildNextSteps orders the fixed remediation items first, then appends each
// violation's suggested action, deduplicating by exact string.
func buildNextSteps(snap *playerSnapshot, summary models.EligibilitySummary, violations []models.EligibilityViolation) []string {
	steps := []string{}
	seen := map[string]bool{}
	add := func(step string) {
		if step == "" || seen[step] {
			return
		}
		seen[step] = true
		steps = append(steps, step)
	}

	if !summary.DocumentsVerified {
		add("Complete document verification")
	}
	if !summary.ConsentsGranted {
		add("Grant required consents")
	}
	if !summary.MedicalClearanceValid {
		add("Obtain valid medical clearance")
	}
	if snap.Player.RegistrationStatus != models.RegistrationApproved {
		add("Complete registration approval")
	}
	for _, v := range violations {
		add(v.SuggestedAction)
	}
	if len(steps) == 0 {
		add("Ready for tournament participation")
	}
	return steps
}
