// Package workflow defines the approval chain for household applications:
// the ordered reviewer steps, the decision vocabulary, and the pure
// transition function mapping (current step, decision) to the next step or
// a terminal outcome. It has no storage or transport dependencies so it can
// be exercised from any interface.
package workflow

import (
	"errors"
	"fmt"

	"github.com/OpenSAMS/sams/internal/household/model"
)

var (
	// ErrInvalidStep is returned when the step is not a reviewable step of
	// the approval chain (unknown, or the terminal "completed" marker).
	ErrInvalidStep = errors.New("invalid assessment step")

	// ErrInvalidDecision is returned when the decision is outside the
	// agree / disagree / requires_further_info vocabulary.
	ErrInvalidDecision = errors.New("invalid decision")
)

// stepOrder is the fixed approval sequence. The terminal "completed" marker
// follows the minister step and is not itself reviewable.
var stepOrder = []model.AssessmentStep{
	model.AssessmentStepCoordinator,
	model.AssessmentStepDirector,
	model.AssessmentStepPermanentSecretary,
	model.AssessmentStepMinister,
}

// Outcome is the result of applying one decision at one step.
type Outcome struct {
	// ReturnToIntake is set when the household leaves the workflow for more
	// information: the step field is cleared and the household goes back to
	// the intake pool.
	ReturnToIntake bool

	// NextStep is the step the household advances to, or
	// AssessmentStepCompleted when the minister has decided. Unset when
	// ReturnToIntake is true.
	NextStep model.AssessmentStep

	// ProgramStatus is the new program status, when the outcome carries one:
	// pending_additional_info on a return to intake, enrolled/rejected on a
	// minister decision. Nil for ordinary advances, which never touch the
	// program status.
	ProgramStatus *model.ProgramStatus
}

// StepOrder returns the ordered reviewer steps, coordinator first.
func StepOrder() []model.AssessmentStep {
	out := make([]model.AssessmentStep, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// IsReviewStep reports whether step is a step a reviewer can act on.
func IsReviewStep(step model.AssessmentStep) bool {
	return stepIndex(step) >= 0
}

// ValidDecision reports whether d is within the decision vocabulary.
func ValidDecision(d model.Decision) bool {
	switch d {
	case model.DecisionAgree, model.DecisionDisagree, model.DecisionRequiresFurtherInfo:
		return true
	}
	return false
}

// Next computes the outcome of one decision at one step.
//
// A requires_further_info decision at any step returns the household to the
// intake pool. Agree and disagree both advance to the following step; a
// disagree at a non-terminal step does not halt the workflow, it travels
// with the household for later reviewers to see. Only the minister's
// decision is terminal: agree enrolls, disagree rejects.
func Next(current model.AssessmentStep, decision model.Decision) (Outcome, error) {
	idx := stepIndex(current)
	if idx < 0 {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidStep, current)
	}
	if !ValidDecision(decision) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	if decision == model.DecisionRequiresFurtherInfo {
		status := model.ProgramStatusPendingAdditionalInfo
		return Outcome{ReturnToIntake: true, ProgramStatus: &status}, nil
	}

	if idx == len(stepOrder)-1 {
		status := model.ProgramStatusEnrolled
		if decision == model.DecisionDisagree {
			status = model.ProgramStatusRejected
		}
		return Outcome{NextStep: model.AssessmentStepCompleted, ProgramStatus: &status}, nil
	}

	return Outcome{NextStep: stepOrder[idx+1]}, nil
}

func stepIndex(step model.AssessmentStep) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return -1
}
