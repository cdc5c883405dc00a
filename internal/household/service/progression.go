package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenSAMS/sams/internal/household/model"
	"github.com/OpenSAMS/sams/internal/household/workflow"
)

// stepColumns maps each reviewable step to its decision/comment columns.
// Keeping the step set closed here means both the progress and save-only
// paths write the same fields for the same step, with no if/else drift.
var stepColumns = map[model.AssessmentStep]struct {
	decision string
	comments string
}{
	model.AssessmentStepCoordinator:        {"coordinator_decision", "coordinator_comments"},
	model.AssessmentStepDirector:           {"director_decision", "director_comments"},
	model.AssessmentStepPermanentSecretary: {"permanent_secretary_decision", "permanent_secretary_comments"},
	model.AssessmentStepMinister:           {"minister_decision", "minister_comments"},
}

// applyStepFields builds the column map persisting one step's decision and
// comments. Shared by Progress and SaveStepNotes.
func applyStepFields(step model.AssessmentStep, decision model.Decision, comments string) (map[string]any, error) {
	cols, ok := stepColumns[step]
	if !ok {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidStep, step)
	}
	return map[string]any{
		cols.decision: decision,
		cols.comments: comments,
		"updated_at":  time.Now().UTC(),
	}, nil
}

// ProgressionService applies reviewer decisions to household applications.
// Each Progress call is one atomic state transition: the step's decision
// fields, the step advance (or terminal status), and the history entry are
// committed together or not at all.
type ProgressionService struct {
	repo HouseholdRepository
}

func NewProgressionService(repo HouseholdRepository) *ProgressionService {
	return &ProgressionService{repo: repo}
}

// Progress applies one reviewer decision at one step.
//
// The household must currently be at exactly the given step; when another
// reviewer moved it first the call fails with ErrStepConflict and no state
// changes. Validation failures are reported before any storage access.
// Returns the household as it stands after the transition.
func (s *ProgressionService) Progress(
	ctx context.Context,
	householdID uuid.UUID,
	step model.AssessmentStep,
	decision model.Decision,
	comments string,
	snapshot model.RecommendationSnapshot,
	actorID string,
) (*model.Household, error) {
	if householdID == uuid.Nil {
		return nil, fmt.Errorf("household ID cannot be nil")
	}
	if actorID == "" {
		return nil, fmt.Errorf("actor ID cannot be empty")
	}
	if !workflow.IsReviewStep(step) {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidStep, step)
	}
	if !workflow.ValidDecision(decision) {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidDecision, decision)
	}

	var updated *model.Household

	err := s.repo.InTransaction(ctx, func(tx *gorm.DB) error {
		household, err := s.repo.GetHouseholdForUpdateInTx(ctx, tx, householdID)
		if err != nil {
			return err
		}
		if household.AssessmentStep == nil {
			return ErrNotInAssessment
		}
		if *household.AssessmentStep != step {
			return ErrStepConflict
		}

		outcome, err := workflow.Next(step, decision)
		if err != nil {
			return err
		}

		fields, err := applyStepFields(step, decision, comments)
		if err != nil {
			return err
		}
		if outcome.ReturnToIntake {
			fields["assessment_step"] = nil
		} else {
			fields["assessment_step"] = outcome.NextStep
		}
		if outcome.ProgramStatus != nil {
			fields["program_status"] = *outcome.ProgramStatus
		}

		// Step match is re-checked at write time in addition to the row lock.
		if err := s.repo.UpdateWorkflowFieldsInTx(ctx, tx, householdID, step, fields); err != nil {
			return err
		}

		entry := &model.WorkflowHistoryEntry{
			HouseholdID: householdID,
			Cycle:       household.AssessmentCycle,
			Step:        step,
			Decision:    decision,
			Comments:    comments,
			Snapshot:    snapshot,
			ActorID:     actorID,
		}
		if err := s.repo.AppendHistoryEntryInTx(ctx, tx, entry); err != nil {
			return err
		}

		updated, err = s.repo.GetHouseholdInTx(ctx, tx, householdID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("assessment progressed",
		"household_id", householdID,
		"step", step,
		"decision", decision,
		"actor_id", actorID,
	)
	return updated, nil
}

// SaveStepNotes persists a reviewer's work-in-progress decision and comments
// for a step without progressing the workflow: no transition is evaluated,
// no history entry is written, and assessment_step/program_status are never
// touched.
//
// Unlike Progress this path takes no step-match precondition; two reviewers
// saving notes on the same step is last-write-wins.
func (s *ProgressionService) SaveStepNotes(
	ctx context.Context,
	householdID uuid.UUID,
	step model.AssessmentStep,
	decision model.Decision,
	comments string,
) (*model.Household, error) {
	if householdID == uuid.Nil {
		return nil, fmt.Errorf("household ID cannot be nil")
	}
	if !workflow.IsReviewStep(step) {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidStep, step)
	}
	if !workflow.ValidDecision(decision) {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidDecision, decision)
	}

	fields, err := applyStepFields(step, decision, comments)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateHouseholdFields(ctx, householdID, fields); err != nil {
		return nil, err
	}

	return s.repo.GetHousehold(ctx, householdID)
}

// History returns a household's workflow history entries, oldest first.
func (s *ProgressionService) History(ctx context.Context, householdID uuid.UUID) ([]model.WorkflowHistoryEntry, error) {
	if householdID == uuid.Nil {
		return nil, fmt.Errorf("household ID cannot be nil")
	}
	return s.repo.ListHistoryByHouseholdID(ctx, householdID)
}
