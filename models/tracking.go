package models

import (
	"time"

	"gorm.io/gorm"
)

// Tracking categories.
const (
	CategoryMood       = "mood"
	CategorySleep      = "sleep"
	CategoryMeditation = "meditation"
)

// TrackingEntry is a single logged data point for mood, sleep or
// meditation activity. Entries are immutable once written: there is no
// update path, only user-initiated deletion. The Value meaning depends on
// the category: mood score 1-10, sleep hours, or meditation minutes.
type TrackingEntry struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Category    string         `gorm:"not null;index;check:category IN ('mood', 'sleep', 'meditation')" json:"category"`
	Value       float64        `gorm:"not null" json:"value"`
	Quality     *int           `json:"quality,omitempty"`                       // Sleep only, 1-10
	SessionType string         `gorm:"size:100" json:"session_type,omitempty"` // Meditation only
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`
	Tags        string         `gorm:"size:500" json:"tags,omitempty"` // Comma-separated
	RecordedAt  time.Time      `gorm:"not null;index" json:"recorded_at"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TrackingEntry) TableName() string {
	return "tracking_entries"
}
