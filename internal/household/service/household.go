package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenSAMS/sams/internal/household/model"
	"github.com/OpenSAMS/sams/utils"
)

// HouseholdService provides intake and record-keeping operations around
// household applications: creation with code assignment, list/detail reads,
// non-workflow updates, home visits, and handing a household over to the
// assessment workflow.
type HouseholdService struct {
	db   *gorm.DB
	repo HouseholdRepository
}

func NewHouseholdService(db *gorm.DB, repo HouseholdRepository) *HouseholdService {
	return &HouseholdService{db: db, repo: repo}
}

// CreateHousehold registers a new household application from an intake
// submission. Application and household codes are assigned per year inside
// the transaction; the unique indexes on both codes backstop concurrent
// intake.
func (s *HouseholdService) CreateHousehold(ctx context.Context, createReq *model.CreateHouseholdDTO) (*model.Household, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if len(createReq.Members) == 0 {
		return nil, fmt.Errorf("household must have at least one member")
	}

	var household *model.Household

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := time.Now().UTC().Year()

		seq, err := nextCodeSequence(tx, year)
		if err != nil {
			return err
		}

		household = &model.Household{
			ApplicationCode: FormatApplicationCode(year, seq),
			HouseholdCode:   FormatHouseholdCode(year, seq),
			HeadFirstName:   createReq.HeadFirstName,
			HeadLastName:    createReq.HeadLastName,
			District:        createReq.District,
			Village:         createReq.Village,
			ContactPhone:    createReq.ContactPhone,
			ProgramStatus:   model.ProgramStatusPendingAssessment,
		}
		if err := tx.Create(household).Error; err != nil {
			return fmt.Errorf("failed to create household: %w", err)
		}

		members := make([]model.Member, len(createReq.Members))
		for i, m := range createReq.Members {
			members[i] = model.Member{
				HouseholdID: household.ID,
				FirstName:   m.FirstName,
				LastName:    m.LastName,
				NationalID:  m.NationalID,
				DateOfBirth: m.DateOfBirth,
				Sex:         m.Sex,
				Role:        m.Role,
				Disabled:    m.Disabled,
			}
		}
		if err := tx.Create(&members).Error; err != nil {
			return fmt.Errorf("failed to create household members: %w", err)
		}
		household.Members = members

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("household application created",
		"household_id", household.ID,
		"application_code", household.ApplicationCode,
	)
	return household, nil
}

// GetHouseholdByID retrieves a household with its members.
func (s *HouseholdService) GetHouseholdByID(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("household ID cannot be nil")
	}

	var household model.Household
	result := s.db.WithContext(ctx).
		Preload("Members").
		First(&household, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrHouseholdNotFound
		}
		return nil, fmt.Errorf("failed to retrieve household: %w", result.Error)
	}
	return &household, nil
}

// ListHouseholds retrieves households matching the filter, newest first.
func (s *HouseholdService) ListHouseholds(ctx context.Context, filter model.HouseholdFilter) ([]model.Household, error) {
	offset, limit := utils.GetPaginationParams(filter.Offset, filter.Limit)

	query := s.db.WithContext(ctx).Model(&model.Household{})
	if filter.ProgramStatus != "" {
		query = query.Where("program_status = ?", filter.ProgramStatus)
	}
	if filter.AssessmentStep != nil {
		query = query.Where("assessment_step = ?", *filter.AssessmentStep)
	}
	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}

	var households []model.Household
	result := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&households)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list households: %w", result.Error)
	}
	return households, nil
}

// UpdateHousehold applies non-workflow field changes.
func (s *HouseholdService) UpdateHousehold(ctx context.Context, id uuid.UUID, updateReq *model.UpdateHouseholdDTO) (*model.Household, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if updateReq.HeadFirstName != nil {
		fields["head_first_name"] = *updateReq.HeadFirstName
	}
	if updateReq.HeadLastName != nil {
		fields["head_last_name"] = *updateReq.HeadLastName
	}
	if updateReq.District != nil {
		fields["district"] = *updateReq.District
	}
	if updateReq.Village != nil {
		fields["village"] = *updateReq.Village
	}
	if updateReq.ContactPhone != nil {
		fields["contact_phone"] = *updateReq.ContactPhone
	}

	if err := s.repo.UpdateHouseholdFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetHouseholdByID(ctx, id)
}

// SubmitToAssessment hands a household in the intake pool over to the
// assessment workflow: the step becomes coordinator, the cycle counter
// increments, and the program status resets to pending_assessment. A
// household already in the workflow is rejected with ErrAlreadyInAssessment.
// Re-submission after a requires_further_info return enters a new cycle.
func (s *HouseholdService) SubmitToAssessment(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("household ID cannot be nil")
	}

	var updated *model.Household

	err := s.repo.InTransaction(ctx, func(tx *gorm.DB) error {
		household, err := s.repo.GetHouseholdForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if household.AssessmentStep != nil {
			return ErrAlreadyInAssessment
		}

		fields := map[string]any{
			"assessment_step":  model.AssessmentStepCoordinator,
			"assessment_cycle": household.AssessmentCycle + 1,
			"program_status":   model.ProgramStatusPendingAssessment,
			"updated_at":       time.Now().UTC(),
		}
		result := tx.WithContext(ctx).Model(&model.Household{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return fmt.Errorf("failed to submit household to assessment: %w", result.Error)
		}

		updated, err = s.repo.GetHouseholdInTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("household submitted to assessment",
		"household_id", id,
		"cycle", updated.AssessmentCycle,
	)
	return updated, nil
}

// RecordHomeVisit attaches a verification visit to a household.
func (s *HouseholdService) RecordHomeVisit(ctx context.Context, householdID uuid.UUID, officerID string, createReq *model.CreateHomeVisitDTO) (*model.HomeVisit, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if officerID == "" {
		return nil, fmt.Errorf("officer ID cannot be empty")
	}
	if _, err := s.repo.GetHousehold(ctx, householdID); err != nil {
		return nil, err
	}

	visit := &model.HomeVisit{
		HouseholdID: householdID,
		VisitDate:   createReq.VisitDate,
		OfficerID:   officerID,
		Findings:    createReq.Findings,
		Verified:    createReq.Verified,
	}
	if err := s.db.WithContext(ctx).Create(visit).Error; err != nil {
		return nil, fmt.Errorf("failed to record home visit: %w", err)
	}
	return visit, nil
}

// ListHomeVisits returns a household's visits, newest first.
func (s *HouseholdService) ListHomeVisits(ctx context.Context, householdID uuid.UUID) ([]model.HomeVisit, error) {
	var visits []model.HomeVisit
	result := s.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("visit_date DESC").
		Find(&visits)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list home visits: %w", result.Error)
	}
	return visits, nil
}

// FormatApplicationCode renders the human-facing application code.
func FormatApplicationCode(year, seq int) string {
	return fmt.Sprintf("APP-%d-%05d", year, seq)
}

// FormatHouseholdCode renders the human-facing household code.
func FormatHouseholdCode(year, seq int) string {
	return fmt.Sprintf("HH-%d-%05d", year, seq)
}

// codeSequenceLockClass namespaces the advisory lock used for code
// assignment, away from any other advisory locks on the same database.
const codeSequenceLockClass = 7201

// applicationCodePrefix is the LIKE pattern matching every application code
// issued in a year. Must agree with FormatApplicationCode.
func applicationCodePrefix(year int) string {
	return fmt.Sprintf("APP-%d-%%", year)
}

// nextCodeSequence returns the next per-year code sequence number. The
// advisory transaction lock serializes concurrent intakes on the same year,
// so two applications cannot be handed the same sequence; the lock is
// released with the transaction.
func nextCodeSequence(tx *gorm.DB, year int) (int, error) {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", codeSequenceLockClass, year).Error; err != nil {
		return 0, fmt.Errorf("failed to acquire code sequence lock for year %d: %w", year, err)
	}

	var count int64
	if err := tx.Model(&model.Household{}).Where("application_code LIKE ?", applicationCodePrefix(year)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count applications for year %d: %w", year, err)
	}
	return int(count) + 1, nil
}
