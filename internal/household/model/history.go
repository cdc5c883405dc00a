package model

import "github.com/google/uuid"

// RecommendationSnapshot is the recommendation as it stood when a reviewer
// acted, frozen into the history entry.
type RecommendationSnapshot struct {
	Amount                  float64         `json:"amount"`
	DurationMonths          int             `json:"durationMonths"`
	Modality                BenefitModality `json:"modality"`
	ComplementaryActivities string          `json:"complementaryActivities"`
}

// WorkflowHistoryEntry is an immutable audit record of one progression
// action. Entries are only ever created; nothing in the codebase updates or
// deletes them.
type WorkflowHistoryEntry struct {
	BaseModel
	HouseholdID uuid.UUID              `gorm:"type:uuid;column:household_id;not null;index" json:"householdId"`
	Cycle       int                    `gorm:"column:cycle;not null" json:"cycle"`
	Step        AssessmentStep         `gorm:"type:varchar(30);column:step;not null" json:"step"`
	Decision    Decision               `gorm:"type:varchar(30);column:decision;not null" json:"decision"`
	Comments    string                 `gorm:"type:text;column:comments" json:"comments"`
	Snapshot    RecommendationSnapshot `gorm:"type:jsonb;column:snapshot;serializer:json" json:"snapshot"`
	ActorID     string                 `gorm:"type:varchar(100);column:actor_id;not null" json:"actorId"`

	Household *Household `gorm:"foreignKey:HouseholdID;references:ID" json:"-"`
}

func (e *WorkflowHistoryEntry) TableName() string {
	return "workflow_history_entries"
}
