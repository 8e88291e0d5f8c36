package models

import (
	"time"

	"gorm.io/gorm"
)

// CareLink is an active therapist-patient relationship. It grants the
// therapist read access to the patient's tracked data, never write access.
type CareLink struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TherapistID string         `gorm:"type:uuid;not null;index" json:"therapist_id"`
	PatientID   string         `gorm:"type:uuid;not null;index" json:"patient_id"`
	Active      bool           `gorm:"default:true" json:"active"`
	AssignedAt  time.Time      `gorm:"not null" json:"assigned_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Therapist User `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
	Patient   User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// SessionNote is a therapist-authored note about a linked patient.
type SessionNote struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TherapistID string         `gorm:"type:uuid;not null;index" json:"therapist_id"`
	PatientID   string         `gorm:"type:uuid;not null;index" json:"patient_id"`
	Note        string         `gorm:"type:text;not null" json:"note"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Request statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// TherapistRequest is a patient-initiated appointment request. Accepting
// it creates the CareLink.
type TherapistRequest struct {
	ID            string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     string         `gorm:"type:uuid;not null;index" json:"patient_id"`
	TherapistID   string         `gorm:"type:uuid;not null;index" json:"therapist_id"`
	ContactName   string         `gorm:"not null" json:"contact_name"`
	ContactEmail  string         `gorm:"not null" json:"contact_email"`
	ContactPhone  string         `gorm:"size:50;not null" json:"contact_phone"`
	PreferredAt   time.Time      `gorm:"not null" json:"preferred_at"`
	Concerns      string         `gorm:"type:text;not null" json:"concerns"`
	Status        string         `gorm:"not null;default:'pending';check:status IN ('pending', 'accepted', 'declined')" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Patient   User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Therapist User `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
}
