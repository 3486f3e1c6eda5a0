package models

import (
	"time"
)

// Venue types accepted in venue_type
const (
	VenueTypeIRL     = "IRL"
	VenueTypeVirtual = "Virtual"
	VenueTypeHybrid  = "Hybrid"
)

// Ecosystem focus values accepted in ecosystem_focus
const (
	EcosystemFocusAdjacent  = "Adjacent"
	EcosystemFocusCore      = "Core"
	EcosystemFocusEcosystem = "Ecosystem"
)

// VenueTypes lists the venue type enumeration in display order
var VenueTypes = []string{VenueTypeIRL, VenueTypeVirtual, VenueTypeHybrid}

// EcosystemFocuses lists the ecosystem focus enumeration in display order
var EcosystemFocuses = []string{EcosystemFocusAdjacent, EcosystemFocusCore, EcosystemFocusEcosystem}

// Event represents one curated conference or meetup row.
// Link, CategoryOptional and ThemeOptional hold JSON-encoded string arrays;
// use the codec package to read or write them.
type Event struct {
	ID               int64      `gorm:"primaryKey;column:id" json:"id"`
	Name             *string    `gorm:"column:event;type:text" json:"event"`
	Location         *string    `gorm:"column:location_optional;type:text" json:"location_optional"`
	VenueType        *string    `gorm:"column:venue_type;size:20;index" json:"venue_type"`
	EcosystemFocus   *string    `gorm:"column:ecosystem_focus;size:20;index" json:"ecosystem_focus"`
	Season           *string    `gorm:"column:season;type:text" json:"season"`
	Twitter          *string    `gorm:"column:twitter;type:text" json:"twitter"`
	Farcaster        *string    `gorm:"column:farcaster;type:text" json:"farcaster"`
	Discord          *string    `gorm:"column:discord;type:text" json:"discord"`
	Telegram         *string    `gorm:"column:telegram;type:text" json:"telegram"`
	Logo             *string    `gorm:"column:logo;type:text" json:"logo"`
	BannerImage      *string    `gorm:"column:banner_image;type:text" json:"banner_image"`
	StartValue       *time.Time `gorm:"column:start_value;index" json:"start_value"`
	EndValue         *time.Time `gorm:"column:end_value" json:"end_value"`
	Link             *string    `gorm:"column:link;type:text" json:"link"`
	CategoryOptional *string    `gorm:"column:category_optional;type:text" json:"category_optional"`
	ThemeOptional    *string    `gorm:"column:theme_optional;type:text" json:"theme_optional"`
	Approved         *bool      `gorm:"column:approved" json:"approved"`
	Highlighted      *bool      `gorm:"column:highlighted" json:"highlighted"`
	CreatedTime      *time.Time `gorm:"column:created_time" json:"created_time"`
	LastEditedTime   *time.Time `gorm:"column:last_edited_time" json:"last_edited_time"`
	CreatedAt        *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Event model
func (Event) TableName() string {
	return "events"
}

// IsApproved reports the approved flag, treating a missing value as false
func (e *Event) IsApproved() bool {
	return e.Approved != nil && *e.Approved
}

// IsHighlighted reports the highlighted flag, treating a missing value as false
func (e *Event) IsHighlighted() bool {
	return e.Highlighted != nil && *e.Highlighted
}

// IsValidVenueType reports whether v is one of the venue type values
func IsValidVenueType(v string) bool {
	for _, t := range VenueTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsValidEcosystemFocus reports whether v is one of the ecosystem focus values
func IsValidEcosystemFocus(v string) bool {
	for _, f := range EcosystemFocuses {
		if f == v {
			return true
		}
	}
	return false
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}
