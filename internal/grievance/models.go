package grievance

import (
	"github.com/google/uuid"

	"github.com/OpenSAMS/sams/internal/household/model"
)

// Status is the triage state of a grievance.
type Status string

const (
	StatusOpen        Status = "open"
	StatusUnderReview Status = "under_review"
	StatusResolved    Status = "resolved"
	StatusDismissed   Status = "dismissed"
)

// Category classifies what the grievance is about.
type Category string

const (
	CategoryExclusion Category = "exclusion" // Complainant believes they were wrongly left out
	CategoryPayment   Category = "payment"
	CategoryConduct   Category = "conduct"
	CategoryOther     Category = "other"
)

// Grievance is a complaint lodged against the program. HouseholdID is nil
// when the complainant is not a registered applicant.
type Grievance struct {
	model.BaseModel
	ReferenceCode   string     `gorm:"type:varchar(30);column:reference_code;not null;uniqueIndex" json:"referenceCode"`
	HouseholdID     *uuid.UUID `gorm:"type:uuid;column:household_id;index" json:"householdId"`
	ComplainantName string     `gorm:"type:varchar(200);column:complainant_name;not null" json:"complainantName"`
	Category        Category   `gorm:"type:varchar(30);column:category;not null" json:"category"`
	Description     string     `gorm:"type:text;column:description;not null" json:"description"`
	Status          Status     `gorm:"type:varchar(30);column:status;not null" json:"status"`
	ResolutionNotes string     `gorm:"type:text;column:resolution_notes" json:"resolutionNotes"`
	DocumentID      *uuid.UUID `gorm:"type:uuid;column:document_id" json:"documentId"` // Optional supporting attachment
}

func (g *Grievance) TableName() string {
	return "grievances"
}

// CreateGrievanceDTO is a new complaint submission.
type CreateGrievanceDTO struct {
	HouseholdID     *uuid.UUID `json:"householdId"`
	ComplainantName string     `json:"complainantName" binding:"required"`
	Category        Category   `json:"category" binding:"required"`
	Description     string     `json:"description" binding:"required"`
	DocumentID      *uuid.UUID `json:"documentId"`
}

// UpdateGrievanceDTO moves a grievance through triage.
type UpdateGrievanceDTO struct {
	Status          Status `json:"status" binding:"required"`
	ResolutionNotes string `json:"resolutionNotes"`
}
