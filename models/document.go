package models

import (
	"time"
)

// Document types accepted by the registry.
const (
	DocumentNationalID         = "NATIONAL_ID"
	DocumentSelfie             = "SELFIE"
	DocumentBirthCertificate   = "BIRTH_CERTIFICATE"
	DocumentPassportPhoto      = "PASSPORT_PHOTO"
	DocumentMedicalCertificate = "MEDICAL_CERTIFICATE"
	DocumentGuardianConsent    = "GUARDIAN_CONSENT"
)

// Verification status of an uploaded document.
const (
	VerificationPending  = "PENDING"
	VerificationVerified = "VERIFIED"
	VerificationRejected = "REJECTED"
)

// RequiredDocumentTypes must each have at least one VERIFIED document before
// a player counts as document-verified.
var RequiredDocumentTypes = []string{DocumentNationalID, DocumentSelfie}

// KnownDocumentTypes is the closed set accepted at upload and rule-config
// write time.
var KnownDocumentTypes = map[string]bool{
	DocumentNationalID:         true,
	DocumentSelfie:             true,
	DocumentBirthCertificate:   true,
	DocumentPassportPhoto:      true,
	DocumentMedicalCertificate: true,
	DocumentGuardianConsent:    true,
}

// PlayerDocument is one uploaded identity/medical artifact. Uploads are
// append-style: re-submission creates a new row, review mutates the status.
type PlayerDocument struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	PlayerID string `json:"player_id" gorm:"not null;index"`

	DocumentType       string `json:"document_type" gorm:"type:varchar(32);not null;index"`
	FileURL            string `json:"file_url" gorm:"type:text"`
	VerificationStatus string `json:"verification_status" gorm:"type:varchar(16);default:'PENDING'"`

	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewerNotes string     `json:"reviewer_notes,omitempty" gorm:"type:text"`

	Timestamps
}
