package models

import (
	"time"
)

// Tournament statuses.
const (
	TournamentDraft      = "draft"
	TournamentPublished  = "published"
	TournamentActive     = "active"
	TournamentCompleted  = "completed"
	TournamentCancelled  = "cancelled"
)

// Tournament is the scope for eligibility rules and registrations.
type Tournament struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Season      string    `json:"season"`                            // e.g., "2026"
	Level       string    `json:"level" gorm:"type:varchar(16)"`     // ward, subcounty, county, national
	Status      string    `json:"status" gorm:"default:'draft'"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Rules []EligibilityRule `json:"rules,omitempty" gorm:"foreignKey:TournamentID"`

	// Calculated fields (not stored in DB)
	ActiveRulesCount int64 `json:"active_rules_count,omitempty" gorm:"-"`
}
