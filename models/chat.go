package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatSession records one AI companion conversation.
type ChatSession struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Status    string         `gorm:"not null;default:'active';check:status IN ('active', 'ended')" json:"status"`
	StartedAt time.Time      `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Messages []ChatMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

// ChatMessage stores one ordered turn of a companion conversation.
type ChatMessage struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID string         `gorm:"type:uuid;not null;index" json:"session_id"`
	TurnOrder int            `gorm:"not null" json:"turn_order"`
	Role      string         `gorm:"not null;check:role IN ('user', 'assistant')" json:"role"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session ChatSession `gorm:"foreignKey:SessionID" json:"-"`
}
