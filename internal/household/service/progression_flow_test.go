package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/OpenSAMS/sams/internal/household/model"
)

// fakeHouseholdStore is an in-memory HouseholdRepository holding one
// household. It enforces the same write-time step precondition as the real
// store, so full decision sequences can be driven through the service.
// afterLockedRead, when set, runs once between the locked read and the
// conditional write, standing in for a writer that got there first.
type fakeHouseholdStore struct {
	household *model.Household
	history   []model.WorkflowHistoryEntry

	afterLockedRead func(s *fakeHouseholdStore)
}

func (s *fakeHouseholdStore) InTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (s *fakeHouseholdStore) GetHousehold(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	return s.GetHouseholdInTx(ctx, nil, id)
}

func (s *fakeHouseholdStore) GetHouseholdInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error) {
	if s.household == nil || s.household.ID != id {
		return nil, ErrHouseholdNotFound
	}
	return copyHousehold(s.household), nil
}

func (s *fakeHouseholdStore) GetHouseholdForUpdateInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Household, error) {
	household, err := s.GetHouseholdInTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if s.afterLockedRead != nil {
		hook := s.afterLockedRead
		s.afterLockedRead = nil
		hook(s)
	}
	return household, nil
}

func (s *fakeHouseholdStore) UpdateWorkflowFieldsInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedStep model.AssessmentStep, fields map[string]any) error {
	if s.household == nil || s.household.ID != id {
		return ErrHouseholdNotFound
	}
	if s.household.AssessmentStep == nil || *s.household.AssessmentStep != expectedStep {
		return ErrStepConflict
	}
	s.applyFields(fields)
	return nil
}

func (s *fakeHouseholdStore) UpdateHouseholdFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if s.household == nil || s.household.ID != id {
		return ErrHouseholdNotFound
	}
	s.applyFields(fields)
	return nil
}

func (s *fakeHouseholdStore) AppendHistoryEntryInTx(ctx context.Context, tx *gorm.DB, entry *model.WorkflowHistoryEntry) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *fakeHouseholdStore) ListHistoryByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.WorkflowHistoryEntry, error) {
	out := make([]model.WorkflowHistoryEntry, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *fakeHouseholdStore) ListHouseholdsWithMembers(ctx context.Context) ([]model.Household, error) {
	return nil, nil
}

func (s *fakeHouseholdStore) FindMemberByNormalizedNationalID(ctx context.Context, normalizedID string) (*model.Member, error) {
	return nil, nil
}

func (s *fakeHouseholdStore) ListMembersByHouseholdID(ctx context.Context, householdID uuid.UUID) ([]model.Member, error) {
	return nil, nil
}

func (s *fakeHouseholdStore) applyFields(fields map[string]any) {
	h := s.household
	for key, value := range fields {
		switch key {
		case "assessment_step":
			if value == nil {
				h.AssessmentStep = nil
			} else {
				step := value.(model.AssessmentStep)
				h.AssessmentStep = &step
			}
		case "program_status":
			h.ProgramStatus = value.(model.ProgramStatus)
		case "assessment_cycle":
			h.AssessmentCycle = value.(int)
		case "coordinator_decision":
			d := value.(model.Decision)
			h.CoordinatorDecision = &d
		case "coordinator_comments":
			h.CoordinatorComments = value.(string)
		case "director_decision":
			d := value.(model.Decision)
			h.DirectorDecision = &d
		case "director_comments":
			h.DirectorComments = value.(string)
		case "permanent_secretary_decision":
			d := value.(model.Decision)
			h.PermanentSecretaryDecision = &d
		case "permanent_secretary_comments":
			h.PermanentSecretaryComments = value.(string)
		case "minister_decision":
			d := value.(model.Decision)
			h.MinisterDecision = &d
		case "minister_comments":
			h.MinisterComments = value.(string)
		}
	}
}

func copyHousehold(h *model.Household) *model.Household {
	out := *h
	if h.AssessmentStep != nil {
		step := *h.AssessmentStep
		out.AssessmentStep = &step
	}
	return &out
}

func newStoreAtStep(step model.AssessmentStep, cycle int) *fakeHouseholdStore {
	return &fakeHouseholdStore{
		household: &model.Household{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			AssessmentStep:  &step,
			AssessmentCycle: cycle,
			ProgramStatus:   model.ProgramStatusPendingAssessment,
		},
	}
}

// Drives one application through two assessment cycles: the director sends
// it back for more information in the first, the full chain enrolls it in
// the second. Every decision must leave exactly one history entry tagged
// with its cycle.
func TestProgressLifecycleAcrossTwoCycles(t *testing.T) {
	store := newStoreAtStep(model.AssessmentStepCoordinator, 1)
	id := store.household.ID
	svc := NewProgressionService(store)
	ctx := context.Background()

	h, err := svc.Progress(ctx, id, model.AssessmentStepCoordinator, model.DecisionAgree, "eligible", model.RecommendationSnapshot{}, "rev-1")
	require.NoError(t, err)
	require.NotNil(t, h.AssessmentStep)
	assert.Equal(t, model.AssessmentStepDirector, *h.AssessmentStep)
	assert.Equal(t, model.ProgramStatusPendingAssessment, h.ProgramStatus)

	h, err = svc.Progress(ctx, id, model.AssessmentStepDirector, model.DecisionRequiresFurtherInfo, "income proof missing", model.RecommendationSnapshot{}, "rev-2")
	require.NoError(t, err)
	assert.Nil(t, h.AssessmentStep)
	assert.Equal(t, model.ProgramStatusPendingAdditionalInfo, h.ProgramStatus)
	assert.Equal(t, 1, h.AssessmentCycle)

	// Resubmission after intake collects the missing information.
	resubmitted := model.AssessmentStepCoordinator
	store.household.AssessmentStep = &resubmitted
	store.household.AssessmentCycle = 2
	store.household.ProgramStatus = model.ProgramStatusPendingAssessment

	snapshot := model.RecommendationSnapshot{Amount: 150, DurationMonths: 12, Modality: model.BenefitModalityCash}
	for _, step := range []model.AssessmentStep{
		model.AssessmentStepCoordinator,
		model.AssessmentStepDirector,
		model.AssessmentStepPermanentSecretary,
		model.AssessmentStepMinister,
	} {
		h, err = svc.Progress(ctx, id, step, model.DecisionAgree, "ok", snapshot, "rev-3")
		require.NoError(t, err)
	}

	require.NotNil(t, h.AssessmentStep)
	assert.Equal(t, model.AssessmentStepCompleted, *h.AssessmentStep)
	assert.Equal(t, model.ProgramStatusEnrolled, h.ProgramStatus)

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 6)

	wantCycles := []int{1, 1, 2, 2, 2, 2}
	wantSteps := []model.AssessmentStep{
		model.AssessmentStepCoordinator,
		model.AssessmentStepDirector,
		model.AssessmentStepCoordinator,
		model.AssessmentStepDirector,
		model.AssessmentStepPermanentSecretary,
		model.AssessmentStepMinister,
	}
	for i, entry := range history {
		assert.Equal(t, wantCycles[i], entry.Cycle, "entry %d cycle", i)
		assert.Equal(t, wantSteps[i], entry.Step, "entry %d step", i)
	}
	assert.Equal(t, model.DecisionRequiresFurtherInfo, history[1].Decision)
	assert.Equal(t, snapshot, history[5].Snapshot)
}

// A writer that moves the step between the locked read and the conditional
// write must surface as a conflict, with no history entry and the other
// writer's state left intact.
func TestProgressRacingWriterConflictsAtWriteTime(t *testing.T) {
	store := newStoreAtStep(model.AssessmentStepDirector, 1)
	store.afterLockedRead = func(s *fakeHouseholdStore) {
		moved := model.AssessmentStepPermanentSecretary
		s.household.AssessmentStep = &moved
	}
	svc := NewProgressionService(store)

	_, err := svc.Progress(context.Background(), store.household.ID, model.AssessmentStepDirector, model.DecisionAgree, "", model.RecommendationSnapshot{}, "rev-1")
	assert.ErrorIs(t, err, ErrStepConflict)

	assert.Empty(t, store.history)
	require.NotNil(t, store.household.AssessmentStep)
	assert.Equal(t, model.AssessmentStepPermanentSecretary, *store.household.AssessmentStep)
	assert.Nil(t, store.household.DirectorDecision)
}

// Two reviewers acting on the same step: the first decision lands, the
// second sees a conflict and leaves no trace.
func TestProgressSecondDecisionAtSameStepConflicts(t *testing.T) {
	store := newStoreAtStep(model.AssessmentStepCoordinator, 1)
	svc := NewProgressionService(store)
	ctx := context.Background()

	_, err := svc.Progress(ctx, store.household.ID, model.AssessmentStepCoordinator, model.DecisionAgree, "first", model.RecommendationSnapshot{}, "rev-1")
	require.NoError(t, err)

	_, err = svc.Progress(ctx, store.household.ID, model.AssessmentStepCoordinator, model.DecisionDisagree, "second", model.RecommendationSnapshot{}, "rev-2")
	assert.ErrorIs(t, err, ErrStepConflict)

	require.Len(t, store.history, 1)
	assert.Equal(t, model.DecisionAgree, store.history[0].Decision)
	require.NotNil(t, store.household.CoordinatorDecision)
	assert.Equal(t, model.DecisionAgree, *store.household.CoordinatorDecision)
	assert.Equal(t, "first", store.household.CoordinatorComments)
}
