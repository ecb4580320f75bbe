package services

import (
	"encoding/json"
	"testing"
	"time"

	"league-management-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// An in-memory sqlite database exists per connection; cap the pool at one
	// so every query sees the same database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.County{}, &models.SubCounty{}, &models.Ward{},
		&models.Player{}, &models.PlayerDocument{}, &models.PlayerConsent{},
		&models.Tournament{}, &models.EligibilityRule{}, &models.EligibilityOverride{},
	))
	return db
}

func seedGeography(t *testing.T, db *gorm.DB, countyID, subCountyID, wardID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.County{ID: countyID, Code: countyID, Name: "County " + countyID}).Error)
	require.NoError(t, db.Create(&models.SubCounty{ID: subCountyID, CountyID: countyID, Name: "Sub-County " + subCountyID}).Error)
	require.NoError(t, db.Create(&models.Ward{ID: wardID, SubCountyID: subCountyID, Name: "Ward " + wardID}).Error)
}

// seedEligiblePlayer creates a player that passes every baseline check:
// approved registration, both required documents verified, both required
// consents granted, and a valid, unexpired medical clearance.
func seedEligiblePlayer(t *testing.T, db *gorm.DB, wardID string) models.Player {
	t.Helper()
	dob := time.Date(1998, 6, 15, 0, 0, 0, 0, time.UTC)
	cleared := time.Now().AddDate(0, 0, -30)
	expires := time.Now().AddDate(0, 6, 0)
	player := models.Player{
		ID:                     uuid.NewString(),
		UPID:                   "UPID-2026-" + uuid.NewString()[:8],
		FirstName:              "Amina",
		LastName:               "Otieno",
		DateOfBirth:            &dob,
		Gender:                 models.GenderFemale,
		Nationality:            "Kenyan",
		RegistrationStatus:     models.RegistrationApproved,
		PlayerStatus:           models.PlayerStatusActive,
		IsActive:               true,
		MedicalClearanceStatus: models.MedicalValid,
		MedicalClearanceDate:   &cleared,
		MedicalExpiryDate:      &expires,
	}
	if wardID != "" {
		player.WardID = &wardID
	}
	require.NoError(t, db.Create(&player).Error)
	for _, docType := range models.RequiredDocumentTypes {
		seedDocument(t, db, player.ID, docType, models.VerificationVerified)
	}
	for _, consentType := range models.RequiredConsentTypes {
		seedConsent(t, db, player.ID, consentType, true)
	}
	return player
}

func seedDocument(t *testing.T, db *gorm.DB, playerID, docType, status string) models.PlayerDocument {
	t.Helper()
	doc := models.PlayerDocument{
		ID:                 uuid.NewString(),
		PlayerID:           playerID,
		DocumentType:       docType,
		FileURL:            "/uploads/" + uuid.NewString() + ".jpg",
		VerificationStatus: status,
	}
	require.NoError(t, db.Create(&doc).Error)
	return doc
}

func seedConsent(t *testing.T, db *gorm.DB, playerID, consentType string, granted bool) {
	t.Helper()
	now := time.Now()
	consent := models.PlayerConsent{
		ID:          uuid.NewString(),
		PlayerID:    playerID,
		ConsentType: consentType,
		Granted:     granted,
		GrantedBy:   "SELF",
	}
	if granted {
		consent.GrantedAt = &now
	}
	require.NoError(t, db.Create(&consent).Error)
}

func seedRule(t *testing.T, db *gorm.DB, tournamentID, ruleType, name string, cfg any, priority int) models.EligibilityRule {
	t.Helper()
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	rule := models.EligibilityRule{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Name:         name,
		RuleType:     ruleType,
		Config:       raw,
		IsActive:     true,
		Priority:     priority,
	}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

func findViolation(result *models.EligibilityCheckResult, ruleID string) *models.EligibilityViolation {
	for i := range result.Violations {
		if result.Violations[i].RuleID == ruleID {
			return &result.Violations[i]
		}
	}
	return nil
}

func findWarning(result *models.EligibilityCheckResult, ruleID string) *models.EligibilityWarning {
	for i := range result.Warnings {
		if result.Warnings[i].RuleID == ruleID {
			return &result.Warnings[i]
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }

func TestCheckEligibilityFullyEligible(t *testing.T) {
	db := newTestDB(t)
	seedGeography(t, db, "c-047", "sc-047-1", "w-047-1-1")
	player := seedEligiblePlayer(t, db, "w-047-1-1")
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, "t-1")
	require.NoError(t, err)

	assert.True(t, result.IsEligible)
	assert.Empty(t, result.Violations)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, models.StatusEligible, result.Summary.OverallStatus)
	assert.True(t, result.Summary.DocumentsVerified)
	assert.True(t, result.Summary.ConsentsGranted)
	assert.True(t, result.Summary.MedicalClearanceValid)
	assert.True(t, result.Summary.AgeEligible)
	assert.True(t, result.Summary.GeographicEligible)
	assert.Equal(t, []string{"Ready for tournament participation"}, result.Summary.NextSteps)
}

func TestCheckEligibilityPlayerNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility("no-such-player", "t-1")
	require.NoError(t, err)

	assert.False(t, result.IsEligible)
	assert.Equal(t, "no-such-player", result.PlayerID)
	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "PLAYER_NOT_FOUND", v.RuleID)
	assert.Equal(t, models.SeverityCritical, v.Severity)
	assert.False(t, v.CanOverride)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, models.StatusIneligible, result.Summary.OverallStatus)
	assert.Empty(t, result.Summary.NextSteps)
}

func TestCheckEligibilityLookupByUPID(t *testing.T) {
	db := newTestDB(t)
	seedGeography(t, db, "c-047", "sc-047-1", "w-047-1-1")
	player := seedEligiblePlayer(t, db, "w-047-1-1")
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.UPID, "t-1")
	require.NoError(t, err)
	assert.Equal(t, player.ID, result.PlayerID)
	assert.True(t, result.IsEligible)
}

func TestRegistrationStatusCheck(t *testing.T) {
	tests := []struct {
		status       string
		wantRuleID   string
		wantSeverity string
		wantOverride bool
		wantWarning  bool
		wantOverall  string
		wantEligible bool
	}{
		{status: models.RegistrationApproved, wantOverall: models.StatusEligible, wantEligible: true},
		{status: models.RegistrationInReview, wantRuleID: "REG_STATUS_REVIEW", wantWarning: true, wantOverall: models.StatusPendingReview, wantEligible: true},
		{status: models.RegistrationDraft, wantRuleID: "REG_STATUS_INCOMPLETE", wantSeverity: models.SeverityHigh, wantOverall: models.StatusNeedsAction},
		{status: models.RegistrationSubmitted, wantRuleID: "REG_STATUS_INCOMPLETE", wantSeverity: models.SeverityHigh, wantOverall: models.StatusNeedsAction},
		{status: models.RegistrationIncomplete, wantRuleID: "REG_STATUS_INCOMPLETE", wantSeverity: models.SeverityHigh, wantOverall: models.StatusNeedsAction},
		{status: models.RegistrationRejected, wantRuleID: "REG_STATUS_REJECTED", wantSeverity: models.SeverityCritical, wantOverall: models.StatusIneligible},
		{status: models.RegistrationSuspended, wantRuleID: "REG_STATUS_SUSPENDED", wantSeverity: models.SeverityCritical, wantOverride: true, wantOverall: models.StatusIneligible},
		{status: "ARCHIVED", wantRuleID: "REG_STATUS_UNKNOWN", wantSeverity: models.SeverityCritical, wantOverall: models.StatusIneligible},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			db := newTestDB(t)
			seedGeography(t, db, "c-047", "sc-047-1", "w-047-1-1")
			player := seedEligiblePlayer(t, db, "w-047-1-1")
			require.NoError(t, db.Model(&player).Update("registration_status", tc.status).Error)
			svc := NewEligibilityService(db)

			result, err := svc.CheckEligibility(player.ID, "t-1")
			require.NoError(t, err)

			assert.Equal(t, tc.wantEligible, result.IsEligible)
			assert.Equal(t, tc.wantOverall, result.Summary.OverallStatus)
			if tc.wantRuleID == "" {
				assert.Empty(t, result.Violations)
				assert.Empty(t, result.Warnings)
				return
			}
			if tc.wantWarning {
				require.NotNil(t, findWarning(result, tc.wantRuleID))
				assert.Empty(t, result.Violations)
				return
			}
			v := findViolation(result, tc.wantRuleID)
			require.NotNil(t, v)
			assert.Equal(t, tc.wantSeverity, v.Severity)
			assert.Equal(t, tc.wantOverride, v.CanOverride)
		})
	}
}

func TestDocumentCheckLadder(t *testing.T) {
	t.Run("missing required document", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Delete(&models.PlayerDocument{},
			"player_id = ? AND document_type = ?", player.ID, models.DocumentSelfie).Error)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, "t-1")
		require.NoError(t, err)

		v := findViolation(result, "DOC_MISSING")
		require.NotNil(t, v)
		assert.Equal(t, models.SeverityHigh, v.Severity)
		assert.False(t, v.CanOverride)
		assert.Contains(t, v.Reason, models.DocumentSelfie)
		assert.False(t, result.IsEligible)
		assert.False(t, result.Summary.DocumentsVerified)
	})

	t.Run("pending verification warns without blocking", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Model(&models.PlayerDocument{}).
			Where("player_id = ? AND document_type = ?", player.ID, models.DocumentSelfie).
			Update("verification_status", models.VerificationPending).Error)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, "t-1")
		require.NoError(t, err)

		assert.True(t, result.IsEligible)
		assert.Empty(t, result.Violations)
		w := findWarning(result, "DOC_PENDING")
		require.NotNil(t, w)
		assert.Contains(t, w.Message, models.DocumentSelfie)
		assert.Equal(t, models.StatusPendingReview, result.Summary.OverallStatus)
		assert.False(t, result.Summary.DocumentsVerified)
		assert.Equal(t, "Complete document verification", result.Summary.NextSteps[0])
	})

	t.Run("rejected optional document blocks", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		seedDocument(t, db, player.ID, models.DocumentBirthCertificate, models.VerificationRejected)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, "t-1")
		require.NoError(t, err)

		v := findViolation(result, "DOC_REJECTED")
		require.NotNil(t, v)
		assert.Contains(t, v.Reason, models.DocumentBirthCertificate)
		assert.False(t, result.IsEligible)
		// Required documents are still verified, only the optional upload was
		// rejected.
		assert.True(t, result.Summary.DocumentsVerified)
	})

	t.Run("missing takes precedence over rejected", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Delete(&models.PlayerDocument{},
			"player_id = ? AND document_type = ?", player.ID, models.DocumentSelfie).Error)
		seedDocument(t, db, player.ID, models.DocumentBirthCertificate, models.VerificationRejected)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, "t-1")
		require.NoError(t, err)

		assert.NotNil(t, findViolation(result, "DOC_MISSING"))
		assert.Nil(t, findViolation(result, "DOC_REJECTED"))
	})

	t.Run("rejected copy reported even with a verified one", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		seedDocument(t, db, player.ID, models.DocumentSelfie, models.VerificationRejected)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, "t-1")
		require.NoError(t, err)

		v := findViolation(result, "DOC_REJECTED")
		require.NotNil(t, v)
		assert.Contains(t, v.Reason, models.DocumentSelfie)
	})
}

func TestConsentCheck(t *testing.T) {
	t.Run("missing required consent blocks", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Delete(&models.PlayerConsent{},
			"player_id = ? AND consent_type = ?", player.ID, models.ConsentDataProcessing).Error)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, "t-1")
		require.NoError(t, err)

		v := findViolation(result, "CONSENT_MISSING")
		require.NotNil(t, v)
		assert.Equal(t, models.SeverityHigh, v.Severity)
		assert.False(t, v.CanOverride)
		assert.Contains(t, v.Reason, models.ConsentDataProcessing)
		assert.False(t, result.Summary.ConsentsGranted)
	})

	t.Run("withdrawn consent counts as missing", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Model(&models.PlayerConsent{}).
			Where("player_id = ? AND consent_type = ?", player.ID, models.ConsentTermsConditions).
			Update("granted", false).Error)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, "t-1")
		require.NoError(t, err)

		v := findViolation(result, "CONSENT_MISSING")
		require.NotNil(t, v)
		assert.Contains(t, v.Reason, models.ConsentTermsConditions)
	})
}

func TestMedicalClearanceCheck(t *testing.T) {
	past := time.Now().AddDate(0, 0, -1)

	tests := []struct {
		name         string
		status       string
		expiry       *time.Time
		wantRuleID   string
		wantWarning  bool
		wantOverride bool
	}{
		{name: "pending warns", status: models.MedicalPending, wantRuleID: "MEDICAL_PENDING", wantWarning: true},
		{name: "rejected blocks but overridable", status: models.MedicalRejected, wantRuleID: "MEDICAL_REJECTED", wantOverride: true},
		{name: "expired status blocks", status: models.MedicalExpired, wantRuleID: "MEDICAL_EXPIRED"},
		{name: "valid with past expiry blocks", status: models.MedicalValid, expiry: &past, wantRuleID: "MEDICAL_EXPIRED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			player := seedEligiblePlayer(t, db, "")
			updates := map[string]any{"medical_clearance_status": tc.status}
			if tc.expiry != nil {
				updates["medical_expiry_date"] = *tc.expiry
			}
			require.NoError(t, db.Model(&player).Updates(updates).Error)
			svc := NewEligibilityService(db)

			result, err := svc.CheckEligibility(player.ID, "t-1")
			require.NoError(t, err)

			assert.False(t, result.Summary.MedicalClearanceValid)
			if tc.wantWarning {
				w := findWarning(result, tc.wantRuleID)
				require.NotNil(t, w)
				assert.Equal(t, "Obtain valid medical clearance", w.SuggestedAction)
				assert.True(t, result.IsEligible)
				return
			}
			v := findViolation(result, tc.wantRuleID)
			require.NotNil(t, v)
			assert.Equal(t, models.SeverityHigh, v.Severity)
			assert.Equal(t, tc.wantOverride, v.CanOverride)
			assert.False(t, result.IsEligible)
		})
	}
}

func TestAgeRangeRule(t *testing.T) {
	cfg := models.AgeRangeConfig{
		MinAge:             intPtr(18),
		MaxAge:             intPtr(35),
		AgeCalculationDate: "2025-01-01",
	}

	tests := []struct {
		name       string
		dob        time.Time
		wantReason string
	}{
		{name: "exactly minimum age", dob: time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "below minimum age", dob: time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC),
			wantReason: "Player is 17 years old, minimum age is 18"},
		{name: "exactly maximum age", dob: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "above maximum age", dob: time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC),
			wantReason: "Player is 36 years old, maximum age is 35"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			player := seedEligiblePlayer(t, db, "")
			require.NoError(t, db.Model(&player).Update("date_of_birth", tc.dob).Error)
			tournamentID := uuid.NewString()
			rule := seedRule(t, db, tournamentID, models.RuleAgeRange, "U35 Age Limit", cfg, 1)
			svc := NewEligibilityService(db)

			result, err := svc.CheckEligibility(player.ID, tournamentID)
			require.NoError(t, err)

			v := findViolation(result, rule.ID)
			if tc.wantReason == "" {
				assert.Nil(t, v)
				assert.True(t, result.Summary.AgeEligible)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tc.wantReason, v.Reason)
			assert.Equal(t, models.SeverityHigh, v.Severity)
			assert.True(t, v.CanOverride)
			assert.False(t, result.Summary.AgeEligible)
			assert.False(t, result.IsEligible)
		})
	}

	t.Run("missing date of birth", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Model(&player).Update("date_of_birth", nil).Error)
		tournamentID := uuid.NewString()
		rule := seedRule(t, db, tournamentID, models.RuleAgeRange, "U35 Age Limit", cfg, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)

		v := findViolation(result, rule.ID)
		require.NotNil(t, v)
		assert.Equal(t, "Player date of birth is not set", v.Reason)
		assert.False(t, v.CanOverride)
	})
}

func TestGeographicRule(t *testing.T) {
	setup := func(t *testing.T) (*gorm.DB, models.Player) {
		db := newTestDB(t)
		seedGeography(t, db, "c-047", "sc-047-1", "w-047-1-1")
		return db, seedEligiblePlayer(t, db, "w-047-1-1")
	}

	t.Run("county in allowed set", func(t *testing.T) {
		db, player := setup(t)
		tournamentID := uuid.NewString()
		seedRule(t, db, tournamentID, models.RuleGeographic, "Home County Only",
			models.GeographicConfig{Scope: models.ScopeCounty, AllowedIDs: []string{"c-047"}}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)
		assert.True(t, result.IsEligible)
		assert.True(t, result.Summary.GeographicEligible)
	})

	t.Run("county outside allowed set", func(t *testing.T) {
		db, player := setup(t)
		tournamentID := uuid.NewString()
		rule := seedRule(t, db, tournamentID, models.RuleGeographic, "Home County Only",
			models.GeographicConfig{Scope: models.ScopeCounty, AllowedIDs: []string{"c-001"}}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)

		v := findViolation(result, rule.ID)
		require.NotNil(t, v)
		assert.True(t, v.CanOverride)
		assert.Equal(t, "Request a geographic override", v.SuggestedAction)
		assert.False(t, result.Summary.GeographicEligible)
		assert.False(t, result.IsEligible)
	})

	t.Run("ward scope matches directly", func(t *testing.T) {
		db, player := setup(t)
		tournamentID := uuid.NewString()
		seedRule(t, db, tournamentID, models.RuleGeographic, "Ward Derby",
			models.GeographicConfig{Scope: models.ScopeWard, AllowedIDs: []string{"w-047-1-1"}}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)
		assert.True(t, result.IsEligible)
	})

	t.Run("sub-county resolved through ward", func(t *testing.T) {
		db, player := setup(t)
		tournamentID := uuid.NewString()
		rule := seedRule(t, db, tournamentID, models.RuleGeographic, "Sub-County Qualifier",
			models.GeographicConfig{Scope: models.ScopeSubCounty, AllowedIDs: []string{"sc-099-9"}}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)

		v := findViolation(result, rule.ID)
		require.NotNil(t, v)
		assert.Contains(t, v.Reason, "sub")
	})

	t.Run("player without ward assignment", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		tournamentID := uuid.NewString()
		rule := seedRule(t, db, tournamentID, models.RuleGeographic, "Home County Only",
			models.GeographicConfig{Scope: models.ScopeCounty, AllowedIDs: []string{"c-047"}}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)

		v := findViolation(result, rule.ID)
		require.NotNil(t, v)
		assert.Equal(t, "Player has no county assignment", v.Reason)
		assert.False(t, v.CanOverride)
	})
}

func TestPlayerStatusRule(t *testing.T) {
	db := newTestDB(t)
	player := seedEligiblePlayer(t, db, "")
	require.NoError(t, db.Model(&player).Update("player_status", models.PlayerStatusTransferred).Error)
	tournamentID := uuid.NewString()
	rule := seedRule(t, db, tournamentID, models.RulePlayerStatus, "Active Players Only",
		models.PlayerStatusConfig{AllowedStatuses: []string{models.PlayerStatusActive}}, 1)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)

	v := findViolation(result, rule.ID)
	require.NotNil(t, v)
	assert.Equal(t, models.SeverityMedium, v.Severity)
	assert.True(t, v.CanOverride)
	// MEDIUM violations never block, and with no warnings present the overall
	// status stays ELIGIBLE.
	assert.True(t, result.IsEligible)
	assert.Equal(t, models.StatusEligible, result.Summary.OverallStatus)
	assert.Contains(t, result.Summary.NextSteps, "Request a player status review")
}

func TestDocumentRequirementRule(t *testing.T) {
	db := newTestDB(t)
	player := seedEligiblePlayer(t, db, "")
	// A pending upload of the required type does not count as verified.
	seedDocument(t, db, player.ID, models.DocumentMedicalCertificate, models.VerificationPending)
	tournamentID := uuid.NewString()
	rule := seedRule(t, db, tournamentID, models.RuleDocumentRequirement, "Medical Certificate Required",
		models.DocumentRequirementConfig{RequiredDocuments: []string{models.DocumentMedicalCertificate}}, 1)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)

	v := findViolation(result, rule.ID)
	require.NotNil(t, v)
	assert.Equal(t, models.SeverityHigh, v.Severity)
	assert.False(t, v.CanOverride)
	assert.Contains(t, v.Reason, models.DocumentMedicalCertificate)

	// Verifying the upload clears the violation.
	require.NoError(t, db.Model(&models.PlayerDocument{}).
		Where("player_id = ? AND document_type = ?", player.ID, models.DocumentMedicalCertificate).
		Update("verification_status", models.VerificationVerified).Error)
	result, err = svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)
	assert.Nil(t, findViolation(result, rule.ID))
	assert.True(t, result.IsEligible)
}

func TestConsentRequirementRule(t *testing.T) {
	db := newTestDB(t)
	player := seedEligiblePlayer(t, db, "")
	tournamentID := uuid.NewString()
	rule := seedRule(t, db, tournamentID, models.RuleConsentRequirement, "Media Release Required",
		models.ConsentRequirementConfig{RequiredConsents: []string{models.ConsentMediaRelease}}, 1)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)

	v := findViolation(result, rule.ID)
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, models.ConsentMediaRelease)
	assert.False(t, result.IsEligible)
	// The baseline consent check is unaffected: the required registry
	// consents are all granted.
	assert.True(t, result.Summary.ConsentsGranted)
	assert.Nil(t, findViolation(result, "CONSENT_MISSING"))
}

func TestGenderRestrictionRule(t *testing.T) {
	db := newTestDB(t)
	player := seedEligiblePlayer(t, db, "")
	require.NoError(t, db.Model(&player).Update("gender", models.GenderMale).Error)
	tournamentID := uuid.NewString()
	rule := seedRule(t, db, tournamentID, models.RuleGenderRestriction, "Women's League",
		models.GenderRestrictionConfig{AllowedGenders: []string{models.GenderFemale}}, 1)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)

	v := findViolation(result, rule.ID)
	require.NotNil(t, v)
	assert.Equal(t, models.SeverityHigh, v.Severity)
	assert.False(t, v.CanOverride)
	assert.False(t, result.IsEligible)
}

func TestMedicalRequirementRule(t *testing.T) {
	t.Run("not required is a no-op", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		tournamentID := uuid.NewString()
		rule := seedRule(t, db, tournamentID, models.RuleMedicalRequirement, "Medical Optional",
			models.MedicalRequirementConfig{RequireValidMedical: false}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)
		assert.Nil(t, findViolation(result, rule.ID))
	})

	t.Run("pending clearance violates when required", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Model(&player).Update("medical_clearance_status", models.MedicalPending).Error)
		tournamentID := uuid.NewString()
		rule := seedRule(t, db, tournamentID, models.RuleMedicalRequirement, "Medical Required",
			models.MedicalRequirementConfig{RequireValidMedical: true}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)

		v := findViolation(result, rule.ID)
		require.NotNil(t, v)
		assert.Equal(t, models.SeverityHigh, v.Severity)
		// The baseline check warns about the same pending clearance.
		assert.NotNil(t, findWarning(result, "MEDICAL_PENDING"))
		assert.False(t, result.IsEligible)
	})

	t.Run("valid but stale clearance", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		cleared := time.Now().AddDate(0, 0, -200)
		require.NoError(t, db.Model(&player).Update("medical_clearance_date", cleared).Error)
		tournamentID := uuid.NewString()
		rule := seedRule(t, db, tournamentID, models.RuleMedicalRequirement, "Fresh Medical Required",
			models.MedicalRequirementConfig{RequireValidMedical: true, MaxMedicalAgeDays: intPtr(180)}, 1)
		svc := NewEligibilityService(db)

		result, err := svc.CheckEligibility(player.ID, tournamentID)
		require.NoError(t, err)

		v := findViolation(result, rule.ID)
		require.NotNil(t, v)
		assert.Equal(t, "Medical clearance is 200 days old, maximum allowed is 180", v.Reason)
		assert.Equal(t, models.SeverityMedium, v.Severity)
		assert.True(t, v.CanOverride)
		assert.True(t, result.IsEligible)
	})
}

func TestUnknownRuleTypeIgnored(t *testing.T) {
	db := newTestDB(t)
	player := seedEligiblePlayer(t, db, "")
	tournamentID := uuid.NewString()
	// Written directly to the store, bypassing write-time validation, to
	// model a rule type introduced by a newer deployment.
	seedRule(t, db, tournamentID, "RESIDENCY_DURATION", "Future Rule",
		map[string]any{"min_months": 6}, 1)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)
	assert.True(t, result.IsEligible)
	assert.Empty(t, result.Violations)
}

func TestInactiveRulesAreSkipped(t *testing.T) {
	db := newTestDB(t)
	player := seedEligiblePlayer(t, db, "")
	require.NoError(t, db.Model(&player).Update("gender", models.GenderMale).Error)
	tournamentID := uuid.NewString()
	rule := seedRule(t, db, tournamentID, models.RuleGenderRestriction, "Women's League",
		models.GenderRestrictionConfig{AllowedGenders: []string{models.GenderFemale}}, 1)
	require.NoError(t, db.Model(&rule).Update("is_active", false).Error)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)
	assert.True(t, result.IsEligible)
	assert.Empty(t, result.Violations)
}

func TestRulePriorityOrdering(t *testing.T) {
	db := newTestDB(t)
	player := seedEligiblePlayer(t, db, "")
	require.NoError(t, db.Model(&player).Updates(map[string]any{
		"gender":        models.GenderMale,
		"player_status": models.PlayerStatusTransferred,
	}).Error)
	tournamentID := uuid.NewString()
	second := seedRule(t, db, tournamentID, models.RuleGenderRestriction, "Women's League",
		models.GenderRestrictionConfig{AllowedGenders: []string{models.GenderFemale}}, 2)
	first := seedRule(t, db, tournamentID, models.RulePlayerStatus, "Active Players Only",
		models.PlayerStatusConfig{AllowedStatuses: []string{models.PlayerStatusActive}}, 1)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, tournamentID)
	require.NoError(t, err)

	require.Len(t, result.Violations, 2)
	assert.Equal(t, first.ID, result.Violations[0].RuleID)
	assert.Equal(t, second.ID, result.Violations[1].RuleID)
}

func TestNextStepsOrderingAndDedup(t *testing.T) {
	db := newTestDB(t)
	dob := time.Date(2000, 3, 10, 0, 0, 0, 0, time.UTC)
	player := models.Player{
		ID:                     uuid.NewString(),
		UPID:                   "UPID-2026-" + uuid.NewString()[:8],
		FirstName:              "Brian",
		LastName:               "Mwangi",
		DateOfBirth:            &dob,
		Gender:                 models.GenderMale,
		RegistrationStatus:     models.RegistrationDraft,
		PlayerStatus:           models.PlayerStatusActive,
		MedicalClearanceStatus: models.MedicalPending,
	}
	require.NoError(t, db.Create(&player).Error)
	svc := NewEligibilityService(db)

	result, err := svc.CheckEligibility(player.ID, "t-1")
	require.NoError(t, err)

	// Fixed remediation items come first, in a stable order; violation
	// suggestions that repeat them are deduplicated.
	assert.Equal(t, []string{
		"Complete document verification",
		"Grant required consents",
		"Obtain valid medical clearance",
		"Complete registration approval",
	}, result.Summary.NextSteps)
	assert.False(t, result.IsEligible)
	assert.Equal(t, models.StatusNeedsAction, result.Summary.OverallStatus)
}

func TestLegacyEligibilityCheck(t *testing.T) {
	t.Run("eligible player", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		svc := NewEligibilityService(db)

		result, err := svc.CheckPlayerEligibility(player.ID, "t-1")
		require.NoError(t, err)
		assert.True(t, result.Eligible)
		assert.Empty(t, result.Reasons)
	})

	t.Run("violations and warnings flatten into reasons", func(t *testing.T) {
		db := newTestDB(t)
		player := seedEligiblePlayer(t, db, "")
		require.NoError(t, db.Model(&player).Updates(map[string]any{
			"registration_status":      models.RegistrationRejected,
			"medical_clearance_status": models.MedicalPending,
		}).Error)
		svc := NewEligibilityService(db)

		result, err := svc.CheckPlayerEligibility(player.ID, "t-1")
		require.NoError(t, err)
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Reasons, "Registration has been rejected")
		assert.Contains(t, result.Reasons, "Medical clearance is pending review")
	})
}

func TestAgeInYears(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		dob  time.Time
		want int
	}{
		{time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC), 18},
		{time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC), 17},
		{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 35},
		{time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC), 36},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ageInYears(tc.dob, at), "dob %s", tc.dob.Format("2006-01-02"))
	}
}
