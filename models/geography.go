package models

import (
	"time"
)

// County is the top level of the geographic hierarchy.
type County struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"` // e.g., "047"
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	SubCounties []SubCounty `json:"sub_counties,omitempty" gorm:"foreignKey:CountyID"`
}

type SubCounty struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CountyID  string    `json:"county_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	County County `json:"county,omitempty" gorm:"foreignKey:CountyID"`
	Wards  []Ward `json:"wards,omitempty" gorm:"foreignKey:SubCountyID"`
}

// Ward is the smallest unit a player is registered against. A player's
// sub-county and county are always resolved through the ward.
type Ward struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	SubCountyID string    `json:"sub_county_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	SubCounty SubCounty `json:"sub_county,omitempty" gorm:"foreignKey:SubCountyID"`
}
