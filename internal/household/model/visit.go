package model

import (
	"time"

	"github.com/google/uuid"
)

// HomeVisit records an officer's verification visit to an applicant household.
type HomeVisit struct {
	BaseModel
	HouseholdID uuid.UUID `gorm:"type:uuid;column:household_id;not null;index" json:"householdId"`
	VisitDate   time.Time `gorm:"type:date;column:visit_date;not null" json:"visitDate"`
	OfficerID   string    `gorm:"type:varchar(100);column:officer_id;not null" json:"officerId"`
	Findings    string    `gorm:"type:text;column:findings" json:"findings"`
	Verified    bool      `gorm:"column:verified;not null;default:false" json:"verified"`

	Household *Household `gorm:"foreignKey:HouseholdID;references:ID" json:"-"`
}

func (v *HomeVisit) TableName() string {
	return "home_visits"
}
