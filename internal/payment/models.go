package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/OpenSAMS/sams/internal/household/model"
)

// Status tracks a scheduled disbursement through its lifecycle.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
)

// Payment is one period's disbursement for an enrolled household.
type Payment struct {
	model.BaseModel
	HouseholdID uuid.UUID             `gorm:"type:uuid;index;not null;uniqueIndex:idx_payments_household_period" json:"householdId"`
	Household   *model.Household      `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
	PeriodYear  int                   `gorm:"not null;uniqueIndex:idx_payments_household_period" json:"periodYear"`
	PeriodMonth int                   `gorm:"not null;uniqueIndex:idx_payments_household_period" json:"periodMonth"`
	Amount      float64               `gorm:"type:numeric(12,2);not null" json:"amount"`
	Modality    model.BenefitModality `gorm:"type:varchar(20);not null" json:"modality"`
	Status      Status                `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	PaidAt      *time.Time            `gorm:"type:timestamptz" json:"paidAt,omitempty"`
	Reference   string                `gorm:"type:varchar(100)" json:"reference,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// GenerateScheduleDTO names the period to schedule disbursements for.
type GenerateScheduleDTO struct {
	Year  int `json:"year" binding:"required,min=2000"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// UpdatePaymentDTO records the outcome of a disbursement attempt.
type UpdatePaymentDTO struct {
	Status    Status `json:"status" binding:"required"`
	Reference string `json:"reference"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	HouseholdID *uuid.UUID
	Status      Status
	PeriodYear  *int
	PeriodMonth *int
	Offset      *int
	Limit       *int
}
