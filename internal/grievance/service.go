package grievance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenSAMS/sams/utils"
)

// ErrGrievanceNotFound is returned when the referenced grievance does not exist.
var ErrGrievanceNotFound = errors.New("grievance not found")

// ErrInvalidStatusChange is returned for a triage move the lifecycle does
// not allow.
var ErrInvalidStatusChange = errors.New("invalid grievance status change")

// Service provides grievance intake and triage.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create registers a new grievance. Reference codes are assigned per year,
// backstopped by the unique index.
func (s *Service) Create(ctx context.Context, createReq *CreateGrievanceDTO) (*Grievance, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}

	var grievance *Grievance

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := time.Now().UTC().Year()
		var count int64
		prefix := fmt.Sprintf("GRV-%d-%%", year)
		if err := tx.Model(&Grievance{}).Where("reference_code LIKE ?", prefix).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count grievances for year %d: %w", year, err)
		}

		grievance = &Grievance{
			ReferenceCode:   fmt.Sprintf("GRV-%d-%05d", year, count+1),
			HouseholdID:     createReq.HouseholdID,
			ComplainantName: createReq.ComplainantName,
			Category:        createReq.Category,
			Description:     createReq.Description,
			Status:          StatusOpen,
			DocumentID:      createReq.DocumentID,
		}
		if err := tx.Create(grievance).Error; err != nil {
			return fmt.Errorf("failed to create grievance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("grievance lodged", "grievance_id", grievance.ID, "reference_code", grievance.ReferenceCode)
	return grievance, nil
}

// GetByID retrieves a grievance.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Grievance, error) {
	var grievance Grievance
	result := s.db.WithContext(ctx).First(&grievance, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGrievanceNotFound
		}
		return nil, fmt.Errorf("failed to retrieve grievance: %w", result.Error)
	}
	return &grievance, nil
}

// List retrieves grievances, optionally filtered by status, newest first.
func (s *Service) List(ctx context.Context, status Status, offset, limit *int) ([]Grievance, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)

	query := s.db.WithContext(ctx).Model(&Grievance{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var grievances []Grievance
	result := query.Order("created_at DESC").Offset(finalOffset).Limit(finalLimit).Find(&grievances)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list grievances: %w", result.Error)
	}
	return grievances, nil
}

// UpdateStatus moves a grievance through triage. Resolved and dismissed are
// terminal.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, updateReq *UpdateGrievanceDTO) (*Grievance, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}
	if !validStatus(updateReq.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusChange, updateReq.Status)
	}

	grievance, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if grievance.Status == StatusResolved || grievance.Status == StatusDismissed {
		return nil, fmt.Errorf("%w: grievance is already %s", ErrInvalidStatusChange, grievance.Status)
	}

	fields := map[string]any{
		"status":     updateReq.Status,
		"updated_at": time.Now().UTC(),
	}
	if updateReq.ResolutionNotes != "" {
		fields["resolution_notes"] = updateReq.ResolutionNotes
	}
	if err := s.db.WithContext(ctx).Model(&Grievance{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update grievance: %w", err)
	}

	return s.GetByID(ctx, id)
}

func validStatus(status Status) bool {
	switch status {
	case StatusOpen, StatusUnderReview, StatusResolved, StatusDismissed:
		return true
	}
	return false
}
