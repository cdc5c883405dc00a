package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OpenSAMS/sams/internal/household/model"
	"github.com/OpenSAMS/sams/utils"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidStatusChange = errors.New("payment status can no longer be changed")
	ErrInvalidStatus       = errors.New("invalid payment status")
)

// Service schedules and settles benefit disbursements.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GenerateSchedule creates one scheduled payment per enrolled household for
// the given period, using each household's recommended amount and modality.
// Households that already have a payment for the period are skipped, so the
// operation can be re-run safely.
func (s *Service) GenerateSchedule(ctx context.Context, req *GenerateScheduleDTO) ([]Payment, error) {
	var created []Payment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var households []model.Household
		if err := tx.
			Where("program_status = ?", model.ProgramStatusEnrolled).
			Order("created_at ASC, id ASC").
			Find(&households).Error; err != nil {
			return fmt.Errorf("failed to load enrolled households: %w", err)
		}

		for _, h := range households {
			p := Payment{
				HouseholdID: h.ID,
				PeriodYear:  req.Year,
				PeriodMonth: req.Month,
				Amount:      h.RecommendedAmount,
				Modality:    h.RecommendedModality,
				Status:      StatusScheduled,
			}
			// ON CONFLICT DO NOTHING keeps re-runs from duplicating a period.
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p)
			if res.Error != nil {
				return fmt.Errorf("failed to schedule payment for household %s: %w", h.ID, res.Error)
			}
			if res.RowsAffected > 0 {
				created = append(created, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment schedule generated",
		"year", req.Year,
		"month", req.Month,
		"created", len(created))

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	offset, limit := utils.GetPaginationParams(filter.Offset, filter.Limit)

	query := s.db.WithContext(ctx).Model(&Payment{})
	if filter.HouseholdID != nil {
		query = query.Where("household_id = ?", *filter.HouseholdID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PeriodYear != nil {
		query = query.Where("period_year = ?", *filter.PeriodYear)
	}
	if filter.PeriodMonth != nil {
		query = query.Where("period_month = ?", *filter.PeriodMonth)
	}

	var payments []Payment
	if err := query.
		Order("period_year DESC, period_month DESC, created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// UpdateStatus settles or fails a scheduled payment. Paid and failed are
// terminal.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *UpdatePaymentDTO) (*Payment, error) {
	if !validStatus(req.Status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}

	var p Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("failed to get payment: %w", err)
		}

		if p.Status != StatusScheduled {
			return fmt.Errorf("%w: payment is %s", ErrInvalidStatusChange, p.Status)
		}

		p.Status = req.Status
		p.Reference = req.Reference
		if req.Status == StatusPaid {
			now := time.Now().UTC()
			p.PaidAt = &now
		}

		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment status updated", "payment_id", p.ID, "status", p.Status)
	return &p, nil
}

func validStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusPaid, StatusFailed:
		return true
	}
	return false
}
