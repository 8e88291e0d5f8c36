package models

import (
	"time"

	"gorm.io/gorm"
)

// JournalEntry is a free-text reflection. MoodScore is either supplied by
// the user or derived from the content by the sentiment scorer; Keywords
// holds the detected mood keywords, comma-separated.
type JournalEntry struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	EntryType string         `gorm:"size:50;not null;default:'free_form'" json:"entry_type"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	MoodScore float64        `gorm:"not null" json:"mood_score"` // -1.0 (very negative) to 1.0 (very positive)
	Keywords  string         `gorm:"size:500" json:"keywords,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Goal is a wellness goal with progress toward a numeric target.
type Goal struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Type        string         `gorm:"size:50;not null;check:type IN ('mood', 'sleep', 'meditation', 'journal')" json:"type"`
	TargetDate  time.Time      `gorm:"not null" json:"target_date"`
	TargetValue int            `gorm:"not null" json:"target_value"`
	Progress    int            `gorm:"default:0" json:"progress"`
	Completed   bool           `gorm:"default:false" json:"completed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// JournalStats is the aggregate shape returned by the stats endpoints.
type JournalStats struct {
	TotalEntries int64      `json:"total_entries"`
	AvgMood      float64    `json:"avg_mood"`
	LastEntry    *time.Time `json:"last_entry,omitempty"`
}
