package models

import (
	"time"

	"github.com/google/uuid"
)

// Form is an administrator-defined form. The slug is the human-assigned
// name used in public routes; the field list is the schema every
// submission is validated against.
type Form struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title          string    `json:"title" gorm:"not null"`
	Slug           string    `json:"slug" gorm:"uniqueIndex;not null"`
	Fields         FieldList `json:"fields" gorm:"type:jsonb;not null"`
	RecipientEmail string    `json:"recipientEmail,omitempty"`
	SuccessMessage string    `json:"successMessage,omitempty"`
	SubmitLabel    string    `json:"submitLabel,omitempty"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
