package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Therapists get read-only visibility into linked patients'
// data; they never write tracking or journal rows.
const (
	RolePatient   = "patient"
	RoleTherapist = "therapist"
	RoleAdmin     = "admin"
)

type User struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Password     string         `gorm:"size:255" json:"-"` // Hashed password (excluded from JSON)
	FirstName    string         `gorm:"size:255;not null" json:"first_name"`
	LastName     string         `gorm:"size:255;not null" json:"last_name"`
	Age          *int           `json:"age,omitempty"`
	Gender       string         `gorm:"size:50" json:"gender,omitempty"`
	Role         string         `gorm:"default:'patient';check:role IN ('patient', 'therapist', 'admin')" json:"role"`
	Specialty    string         `gorm:"size:255" json:"specialty,omitempty"` // Therapists only
	Bio          string         `gorm:"type:text" json:"bio,omitempty"`      // Therapists only
	Available    bool           `gorm:"default:true" json:"available"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	Deactivated  bool           `gorm:"default:false" json:"-"` // Soft deactivation, rows are never hard-deleted
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	TrackingEntries []TrackingEntry `gorm:"foreignKey:UserID" json:"tracking_entries,omitempty"`
	JournalEntries  []JournalEntry  `gorm:"foreignKey:UserID" json:"journal_entries,omitempty"`
	Goals           []Goal          `gorm:"foreignKey:UserID" json:"goals,omitempty"`
	ChatSessions    []ChatSession   `gorm:"foreignKey:UserID" json:"chat_sessions,omitempty"`
	Sessions        []Session       `gorm:"foreignKey:UserID" json:"-"`
}

// Session is a bounded-lifetime authenticated context for a logged-in
// user. The token column stores a SHA-256 hash of the opaque value handed
// to the client; long-lived sessions back the "remember me" cookie.
type Session struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string         `gorm:"uniqueIndex;not null" json:"-"`
	Kind      string         `gorm:"not null;default:'refresh';check:kind IN ('refresh', 'long_lived')" json:"kind"`
	IssuedAt  time.Time      `gorm:"not null" json:"issued_at"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
