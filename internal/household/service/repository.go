package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OpenSAMS/sams/internal/household/model"
)

// HouseholdRepository is the persistence boundary used by the progression
// and registry services. It is an interface so the services can be unit
// tested against a mock.
type HouseholdRepository interface {
	// InTransaction runs fn inside one database transaction. Every write
	// performed through tx is committed or rolled back as a unit.
	InTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// GetHousehold loads a household by ID. Returns ErrHouseholdNotFound
	// when no row exists.
	GetHousehold(ctx context.Context, id uuid.UUID) (*model.Household, error)

	// GetHouseholdInTx is GetHousehold inside an open transaction.
	GetHouseholdInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error)

	// GetHouseholdForUpdateInTx loads a household by ID taking a row lock,
	// serializing concurrent progressions of the same household.
	GetHouseholdForUpdateInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error)

	// UpdateWorkflowFieldsInTx applies fields to the household only if its
	// stored assessment_step still equals expectedStep. Returns
	// ErrStepConflict when the precondition fails and ErrHouseholdNotFound
	// when the row is gone.
	UpdateWorkflowFieldsInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedStep model.AssessmentStep, fields map[string]any) error

	// UpdateHouseholdFields applies fields without any step precondition.
	// Used by the save-only notes path, which is deliberately
	// last-write-wins.
	UpdateHouseholdFields(ctx context.Context, id uuid.UUID, fields map[string]any) error

	// AppendHistoryEntryInTx appends one immutable workflow history entry.
	AppendHistoryEntryInTx(ctx context.Context, tx *gorm.DB, entry *model.WorkflowHistoryEntry) error

	// ListHistoryByHouseholdID returns a household's history entries oldest
	// first.
	ListHistoryByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.WorkflowHistoryEntry, error)

	// ListHouseholdsWithMembers returns every household with its members
	// preloaded, oldest application first. Used for registry building.
	ListHouseholdsWithMembers(ctx context.Context) ([]model.Household, error)

	// FindMemberByNormalizedNationalID looks up a member whose national ID
	// equals the given normalized value. The stored value is normalized the
	// same way before comparison. When several rows match, the one created
	// first wins, deterministically. Returns (nil, nil) when nothing
	// matches.
	FindMemberByNormalizedNationalID(ctx context.Context, normalizedID string) (*model.Member, error)

	// ListMembersByHouseholdID returns a household's members.
	ListMembersByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.Member, error)
}

// GormHouseholdRepository implements HouseholdRepository on gorm/Postgres.
type GormHouseholdRepository struct {
	db *gorm.DB
}

func NewGormHouseholdRepository(db *gorm.DB) *GormHouseholdRepository {
	return &GormHouseholdRepository{db: db}
}

func (r *GormHouseholdRepository) InTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *GormHouseholdRepository) GetHousehold(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	return r.GetHouseholdInTx(ctx, r.db, id)
}

func (r *GormHouseholdRepository) GetHouseholdInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error) {
	var household model.Household
	result := tx.WithContext(ctx).First(&household, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHouseholdNotFound
		}
		return nil, fmt.Errorf("failed to retrieve household: %w", result.Error)
	}
	return &household, nil
}

func (r *GormHouseholdRepository) GetHouseholdForUpdateInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error) {
	var household model.Household
	result := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&household, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHouseholdNotFound
		}
		return nil, fmt.Errorf("failed to retrieve household for update: %w", result.Error)
	}
	return &household, nil
}

func (r *GormHouseholdRepository) UpdateWorkflowFieldsInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedStep model.AssessmentStep, fields map[string]any) error {
	result := tx.WithContext(ctx).Model(&model.Household{}).
		Where("id = ? AND assessment_step = ?", id, expectedStep).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update workflow fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the row is gone or the step moved under us. Tell them apart
		// so the caller can surface an actionable error.
		var count int64
		if err := tx.WithContext(ctx).Model(&model.Household{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check household existence: %w", err)
		}
		if count == 0 {
			return ErrHouseholdNotFound
		}
		return ErrStepConflict
	}
	return nil
}

func (r *GormHouseholdRepository) UpdateHouseholdFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&model.Household{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update household fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHouseholdNotFound
	}
	return nil
}

func (r *GormHouseholdRepository) AppendHistoryEntryInTx(ctx context.Context, tx *gorm.DB, entry *model.WorkflowHistoryEntry) error {
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append workflow history entry: %w", err)
	}
	return nil
}

func (r *GormHouseholdRepository) ListHistoryByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.WorkflowHistoryEntry, error) {
	var entries []model.WorkflowHistoryEntry
	result := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("created_at ASC, id ASC").
		Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list workflow history: %w", result.Error)
	}
	return entries, nil
}

func (r *GormHouseholdRepository) ListHouseholdsWithMembers(ctx context.Context) ([]model.Household, error) {
	var households []model.Household
	result := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("household_members.created_at ASC")
		}).
		Order("created_at ASC, id ASC").
		Find(&households)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list households with members: %w", result.Error)
	}
	return households, nil
}

func (r *GormHouseholdRepository) FindMemberByNormalizedNationalID(ctx context.Context, normalizedID string) (*model.Member, error) {
	var member model.Member
	result := r.db.WithContext(ctx).
		Where("national_id IS NOT NULL AND UPPER(TRIM(national_id)) = ?", normalizedID).
		Order("created_at ASC, id ASC").
		First(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up member by national ID: %w", result.Error)
	}
	return &member, nil
}

func (r *GormHouseholdRepository) ListMembersByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.Member, error) {
	var members []model.Member
	result := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("created_at ASC, id ASC").
		Find(&members)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list household members: %w", result.Error)
	}
	return members, nil
}
