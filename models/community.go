package models

import (
	"time"

	"gorm.io/gorm"
)

// CommunityPost is a public post visible to all authenticated users.
type CommunityPost struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Likes     int            `gorm:"default:0" json:"likes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Resource is a professional help or crisis resource shown to users.
type Resource struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"not null;uniqueIndex" json:"name"`
	Kind        string         `gorm:"size:100;not null" json:"kind"` // hotline, therapist_directory, article
	Contact     string         `gorm:"not null" json:"contact"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Rating      float64        `json:"rating,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
