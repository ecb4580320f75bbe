package models

import (
	"time"

	"gorm.io/gorm"
)

// Registration status: the player's administrative approval state for being
// in the registry at all. Distinct from tournament eligibility and from
// PlayerStatus below.
const (
	RegistrationDraft      = "DRAFT"
	RegistrationSubmitted  = "SUBMITTED"
	RegistrationInReview   = "IN_REVIEW"
	RegistrationApproved   = "APPROVED"
	RegistrationRejected   = "REJECTED"
	RegistrationSuspended  = "SUSPENDED"
	RegistrationIncomplete = "INCOMPLETE"
)

// Player status: the sporting status, set by transfer/discipline workflows.
const (
	PlayerStatusActive      = "ACTIVE"
	PlayerStatusInactive    = "INACTIVE"
	PlayerStatusTransferred = "TRANSFERRED"
	PlayerStatusRetired     = "RETIRED"
	PlayerStatusBanned      = "BANNED"
)

// Medical clearance status.
const (
	MedicalPending  = "PENDING"
	MedicalValid    = "VALID"
	MedicalRejected = "REJECTED"
	MedicalExpired  = "EXPIRED"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// Player is the registry record. Created at registration submission, mutated
// by the review/document/medical workflows, never hard-deleted.
type Player struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	UPID        string     `json:"upid" gorm:"column:upid;uniqueIndex;not null"` // unique player identifier
	FirstName   string     `json:"first_name" gorm:"not null"`
	LastName    string     `json:"last_name" gorm:"not null"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `json:"gender" gorm:"type:varchar(16)"`
	Nationality string     `json:"nationality"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`

	RegistrationStatus string `json:"registration_status" gorm:"type:varchar(16);default:'DRAFT';index"`
	PlayerStatus       string `json:"player_status" gorm:"type:varchar(16);default:'ACTIVE'"`
	IsActive           bool   `json:"is_active" gorm:"default:true"`

	MedicalClearanceStatus string     `json:"medical_clearance_status" gorm:"type:varchar(16);default:'PENDING'"`
	MedicalClearanceDate   *time.Time `json:"medical_clearance_date,omitempty"`
	MedicalExpiryDate      *time.Time `json:"medical_expiry_date,omitempty"`

	// Guardian details, required for minors
	GuardianName  string `json:"guardian_name,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`

	WardID *string `json:"ward_id,omitempty" gorm:"index"`
	Ward   *Ward   `json:"ward,omitempty" gorm:"foreignKey:WardID"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CountyID resolves the player's county through ward → sub-county. Empty when
// the geographic chain is not fully loaded or the player has no ward.
func (p *Player) CountyID() string {
	if p.Ward == nil {
		return ""
	}
	return p.Ward.SubCounty.CountyID
}

// SubCountyID resolves the player's sub-county through the ward.
func (p *Player) SubCountyID() string {
	if p.Ward == nil {
		return ""
	}
	return p.Ward.SubCountyID
}
