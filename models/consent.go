package models

import (
	"time"
)

// Consent types a player (or their guardian) can grant.
const (
	ConsentTermsConditions  = "TERMS_CONDITIONS"
	ConsentDataProcessing   = "DATA_PROCESSING"
	ConsentMediaRelease     = "MEDIA_RELEASE"
	ConsentMedicalTreatment = "MEDICAL_TREATMENT"
)

// RequiredConsentTypes must each be granted before a player counts as
// consent-complete.
var RequiredConsentTypes = []string{ConsentTermsConditions, ConsentDataProcessing}

var KnownConsentTypes = map[string]bool{
	ConsentTermsConditions:  true,
	ConsentDataProcessing:   true,
	ConsentMediaRelease:     true,
	ConsentMedicalTreatment: true,
}

// PlayerConsent is the latest grant state per consent type. Recording a
// consent upserts on (player_id, consent_type).
type PlayerConsent struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	PlayerID string `json:"player_id" gorm:"not null;index"`

	ConsentType string     `json:"consent_type" gorm:"type:varchar(32);not null;index"`
	Granted     bool       `json:"granted" gorm:"default:false"`
	GrantedBy   string     `json:"granted_by,omitempty"` // "SELF" or "GUARDIAN"
	GrantedAt   *time.Time `json:"granted_at,omitempty"`

	Timestamps
}
