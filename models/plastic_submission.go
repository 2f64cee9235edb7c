package models

import "time"

// SubmissionStatus is the verification state of a plastic submission
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionVerified SubmissionStatus = "VERIFIED"
	SubmissionRejected SubmissionStatus = "REJECTED"
)

// PlasticSubmission is a batch of recycled plastic awaiting staff verification
type PlasticSubmission struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	UserID            uint             `gorm:"not null;index" json:"user_id"`
	User              User             `gorm:"foreignKey:UserID" json:"-"`
	Weight            float64          `gorm:"not null;check:weight > 0" json:"weight"` // kg
	PlasticType       string           `json:"plastic_type"`
	Description       string           `json:"description"`
	Location          string           `json:"location"`
	PhotoKey          *string          `json:"photo_key,omitempty"`
	SubmissionDate    time.Time        `gorm:"not null" json:"submission_date"`
	EcoPoints         float64          `gorm:"not null;default:0" json:"eco_points"`
	VerificationDate  *time.Time       `json:"verification_date"`
	VerificationNotes string           `json:"verification_notes"`
	Status            SubmissionStatus `gorm:"not null;default:'PENDING';index" json:"status"`
	Notes             string           `json:"notes"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the PlasticSubmission model
func (PlasticSubmission) TableName() string {
	return "plastic_submissions"
}
