package service

import "errors"

var (
	// ErrHouseholdNotFound is returned when the referenced household does
	// not exist.
	ErrHouseholdNotFound = errors.New("household not found")

	// ErrStepConflict is returned when the household's stored assessment
	// step no longer matches the step the caller is acting on, meaning
	// another reviewer already progressed it. Callers should re-read the
	// household rather than retry.
	ErrStepConflict = errors.New("assessment step no longer matches, household was moved by another reviewer")

	// ErrNotInAssessment is returned when a workflow action targets a
	// household that is not currently in the approval chain.
	ErrNotInAssessment = errors.New("household is not in assessment")

	// ErrAlreadyInAssessment is returned when a household is submitted to
	// the workflow while already in it.
	ErrAlreadyInAssessment = errors.New("household is already in assessment")

	// ErrNationalIDTooShort is returned when a duplicate lookup query is
	// shorter than three characters after trimming, too weak a signal to
	// search on.
	ErrNationalIDTooShort = errors.New("national ID query must be at least 3 characters")
)
