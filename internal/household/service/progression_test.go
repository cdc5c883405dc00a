package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/OpenSAMS/sams/internal/household/model"
	"github.com/OpenSAMS/sams/internal/household/workflow"
)

// MockHouseholdRepository is a mock implementation of HouseholdRepository
type MockHouseholdRepository struct {
	mock.Mock
}

func (m *MockHouseholdRepository) InTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

func (m *MockHouseholdRepository) GetHousehold(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Household), args.Error(1)
}

func (m *MockHouseholdRepository) GetHouseholdInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Household), args.Error(1)
}

func (m *MockHouseholdRepository) GetHouseholdForUpdateInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Household), args.Error(1)
}

func (m *MockHouseholdRepository) UpdateWorkflowFieldsInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedStep model.AssessmentStep, fields map[string]any) error {
	args := m.Called(ctx, tx, id, expectedStep, fields)
	return args.Error(0)
}

func (m *MockHouseholdRepository) UpdateHouseholdFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockHouseholdRepository) AppendHistoryEntryInTx(ctx context.Context, tx *gorm.DB, entry *model.WorkflowHistoryEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockHouseholdRepository) ListHistoryByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.WorkflowHistoryEntry, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkflowHistoryEntry), args.Error(1)
}

func (m *MockHouseholdRepository) ListHouseholdsWithMembers(ctx context.Context) ([]model.Household, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Household), args.Error(1)
}

func (m *MockHouseholdRepository) FindMemberByNormalizedNationalID(ctx context.Context, normalizedID string) (*model.Member, error) {
	args := m.Called(ctx, normalizedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockHouseholdRepository) ListMembersByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.Member, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Member), args.Error(1)
}

func householdAtStep(step model.AssessmentStep) *model.Household {
	h := &model.Household{
		ApplicationCode: "APP-2026-00001",
		HouseholdCode:   "HH-2026-00001",
		ProgramStatus:   model.ProgramStatusPendingAssessment,
		AssessmentStep:  &step,
		AssessmentCycle: 1,
	}
	h.ID = uuid.New()
	return h
}

func TestProgressAdvancesWithoutTouchingStatus(t *testing.T) {
	cases := []struct {
		step model.AssessmentStep
		next model.AssessmentStep
	}{
		{model.AssessmentStepCoordinator, model.AssessmentStepDirector},
		{model.AssessmentStepDirector, model.AssessmentStepPermanentSecretary},
		{model.AssessmentStepPermanentSecretary, model.AssessmentStepMinister},
	}

	for _, tc := range cases {
		for _, decision := range []model.Decision{model.DecisionAgree, model.DecisionDisagree} {
			t.Run(string(tc.step)+"/"+string(decision), func(t *testing.T) {
				mockRepo := new(MockHouseholdRepository)
				svc := NewProgressionService(mockRepo)
				ctx := context.Background()
				household := householdAtStep(tc.step)

				mockRepo.On("InTransaction", mock.Anything, mock.Anything).Return(nil)
				mockRepo.On("GetHouseholdForUpdateInTx", ctx, mock.Anything, household.ID).Return(household, nil)
				mockRepo.On("UpdateWorkflowFieldsInTx", ctx, mock.Anything, household.ID, tc.step, mock.MatchedBy(func(fields map[string]any) bool {
					step, ok := fields["assessment_step"].(model.AssessmentStep)
					if !ok || step != tc.next {
						return false
					}
					// Ordinary advances never change the program status.
					_, hasStatus := fields["program_status"]
					return !hasStatus
				})).Return(nil)
				mockRepo.On("AppendHistoryEntryInTx", ctx, mock.Anything, mock.MatchedBy(func(entry *model.WorkflowHistoryEntry) bool {
					return entry.Step == tc.step && entry.Decision == decision && entry.Cycle == 1
				})).Return(nil)
				mockRepo.On("GetHouseholdInTx", ctx, mock.Anything, household.ID).Return(household, nil)

				_, err := svc.Progress(ctx, household.ID, tc.step, decision, "reviewed", model.RecommendationSnapshot{}, "reviewer-1")
				require.NoError(t, err)
				mockRepo.AssertExpectations(t)
			})
		}
	}
}

func TestProgressMinisterDecisionIsTerminal(t *testing.T) {
	cases := []struct {
		decision model.Decision
		status   model.ProgramStatus
	}{
		{model.DecisionAgree, model.ProgramStatusEnrolled},
		{model.DecisionDisagree, model.ProgramStatusRejected},
	}

	for _, tc := range cases {
		t.Run(string(tc.decision), func(t *testing.T) {
			mockRepo := new(MockHouseholdRepository)
			svc := NewProgressionService(mockRepo)
			ctx := context.Background()
			household := householdAtStep(model.AssessmentStepMinister)

			mockRepo.On("InTransaction", mock.Anything, mock.Anything).Return(nil)
			mockRepo.On("GetHouseholdForUpdateInTx", ctx, mock.Anything, household.ID).Return(household, nil)
			mockRepo.On("UpdateWorkflowFieldsInTx", ctx, mock.Anything, household.ID, model.AssessmentStepMinister, mock.MatchedBy(func(fields map[string]any) bool {
				return fields["assessment_step"] == model.AssessmentStepCompleted &&
					fields["program_status"] == tc.status &&
					fields["minister_decision"] == tc.decision
			})).Return(nil)
			mockRepo.On("AppendHistoryEntryInTx", ctx, mock.Anything, mock.Anything).Return(nil)
			mockRepo.On("GetHouseholdInTx", ctx, mock.Anything, household.ID).Return(household, nil)

			_, err := svc.Progress(ctx, household.ID, model.AssessmentStepMinister, tc.decision, "final", model.RecommendationSnapshot{Amount: 150}, "minister-1")
			require.NoError(t, err)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProgressRequiresFurtherInfoReturnsToIntake(t *testing.T) {
	for _, step := range workflow.StepOrder() {
		t.Run(string(step), func(t *testing.T) {
			mockRepo := new(MockHouseholdRepository)
			svc := NewProgressionService(mockRepo)
			ctx := context.Background()
			household := householdAtStep(step)

			mockRepo.On("InTransaction", mock.Anything, mock.Anything).Return(nil)
			mockRepo.On("GetHouseholdForUpdateInTx", ctx, mock.Anything, household.ID).Return(household, nil)
			mockRepo.On("UpdateWorkflowFieldsInTx", ctx, mock.Anything, household.ID, step, mock.MatchedBy(func(fields map[string]any) bool {
				stepField, hasStep := fields["assessment_step"]
				return hasStep && stepField == nil &&
					fields["program_status"] == model.ProgramStatusPendingAdditionalInfo
			})).Return(nil)
			mockRepo.On("AppendHistoryEntryInTx", ctx, mock.Anything, mock.MatchedBy(func(entry *model.WorkflowHistoryEntry) bool {
				return entry.Step == step && entry.Decision == model.DecisionRequiresFurtherInfo
			})).Return(nil)
			mockRepo.On("GetHouseholdInTx", ctx, mock.Anything, household.ID).Return(household, nil)

			_, err := svc.Progress(ctx, household.ID, step, model.DecisionRequiresFurtherInfo, "need proof of residence", model.RecommendationSnapshot{}, "reviewer-1")
			require.NoError(t, err)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProgressStaleStepIsConflict(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewProgressionService(mockRepo)
	ctx := context.Background()
	// Another reviewer already moved the household to director.
	household := householdAtStep(model.AssessmentStepDirector)

	mockRepo.On("InTransaction", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("GetHouseholdForUpdateInTx", ctx, mock.Anything, household.ID).Return(household, nil)

	_, err := svc.Progress(ctx, household.ID, model.AssessmentStepCoordinator, model.DecisionAgree, "", model.RecommendationSnapshot{}, "reviewer-1")
	assert.ErrorIs(t, err, ErrStepConflict)
	mockRepo.AssertNotCalled(t, "UpdateWorkflowFieldsInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "AppendHistoryEntryInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestProgressHouseholdNotInAssessment(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewProgressionService(mockRepo)
	ctx := context.Background()
	household := householdAtStep(model.AssessmentStepCoordinator)
	household.AssessmentStep = nil

	mockRepo.On("InTransaction", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("GetHouseholdForUpdateInTx", ctx, mock.Anything, household.ID).Return(household, nil)

	_, err := svc.Progress(ctx, household.ID, model.AssessmentStepCoordinator, model.DecisionAgree, "", model.RecommendationSnapshot{}, "reviewer-1")
	assert.ErrorIs(t, err, ErrNotInAssessment)
}

func TestProgressHouseholdNotFound(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewProgressionService(mockRepo)
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("InTransaction", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("GetHouseholdForUpdateInTx", ctx, mock.Anything, id).Return(nil, ErrHouseholdNotFound)

	_, err := svc.Progress(ctx, id, model.AssessmentStepCoordinator, model.DecisionAgree, "", model.RecommendationSnapshot{}, "reviewer-1")
	assert.ErrorIs(t, err, ErrHouseholdNotFound)
}

func TestProgressValidatesBeforeStorage(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewProgressionService(mockRepo)
	ctx := context.Background()

	_, err := svc.Progress(ctx, uuid.New(), model.AssessmentStepCoordinator, "approve", "", model.RecommendationSnapshot{}, "reviewer-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidDecision)

	_, err = svc.Progress(ctx, uuid.New(), model.AssessmentStepCompleted, model.DecisionAgree, "", model.RecommendationSnapshot{}, "reviewer-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidStep)

	mockRepo.AssertNotCalled(t, "InTransaction", mock.Anything, mock.Anything)
}

func TestSaveStepNotesNeverTouchesWorkflowState(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewProgressionService(mockRepo)
	ctx := context.Background()
	household := householdAtStep(model.AssessmentStepDirector)

	mockRepo.On("UpdateHouseholdFields", ctx, household.ID, mock.MatchedBy(func(fields map[string]any) bool {
		if _, has := fields["assessment_step"]; has {
			return false
		}
		if _, has := fields["program_status"]; has {
			return false
		}
		return fields["director_decision"] == model.DecisionRequiresFurtherInfo &&
			fields["director_comments"] == "draft notes"
	})).Return(nil)
	mockRepo.On("GetHousehold", ctx, household.ID).Return(household, nil)

	_, err := svc.SaveStepNotes(ctx, household.ID, model.AssessmentStepDirector, model.DecisionRequiresFurtherInfo, "draft notes")
	require.NoError(t, err)
	// Save-only never evaluates the transition or writes history.
	mockRepo.AssertNotCalled(t, "InTransaction", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "AppendHistoryEntryInTx", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestSaveStepNotesRejectsInvalidInput(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewProgressionService(mockRepo)
	ctx := context.Background()

	_, err := svc.SaveStepNotes(ctx, uuid.New(), model.AssessmentStepCompleted, model.DecisionAgree, "")
	assert.ErrorIs(t, err, workflow.ErrInvalidStep)

	_, err = svc.SaveStepNotes(ctx, uuid.New(), model.AssessmentStepMinister, "maybe", "")
	assert.ErrorIs(t, err, workflow.ErrInvalidDecision)

	mockRepo.AssertNotCalled(t, "UpdateHouseholdFields", mock.Anything, mock.Anything, mock.Anything)
}
