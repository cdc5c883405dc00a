package model

import "time"

// CreateMemberDTO is one member row in an intake submission.
type CreateMemberDTO struct {
	FirstName   string     `json:"firstName" binding:"required"`
	LastName    string     `json:"lastName" binding:"required"`
	NationalID  *string    `json:"nationalId"`
	DateOfBirth time.Time  `json:"dateOfBirth" binding:"required"`
	Sex         string     `json:"sex"`
	Role        MemberRole `json:"role" binding:"required"`
	Disabled    bool       `json:"disabled"`
}

// CreateHouseholdDTO is the intake submission for a new household application.
type CreateHouseholdDTO struct {
	HeadFirstName string            `json:"headFirstName" binding:"required"`
	HeadLastName  string            `json:"headLastName" binding:"required"`
	District      string            `json:"district" binding:"required"`
	Village       string            `json:"village"`
	ContactPhone  string            `json:"contactPhone"`
	Members       []CreateMemberDTO `json:"members" binding:"required,min=1"`
}

// UpdateHouseholdDTO updates non-workflow fields on a household. Workflow
// fields are only ever written by the progression service.
type UpdateHouseholdDTO struct {
	HeadFirstName *string `json:"headFirstName"`
	HeadLastName  *string `json:"headLastName"`
	District      *string `json:"district"`
	Village       *string `json:"village"`
	ContactPhone  *string `json:"contactPhone"`
}

// ProgressAssessmentDTO is one reviewer decision applied to one household.
// Step is the step the reviewer believes the household is at; a mismatch
// with the stored step is reported as a conflict, not silently applied.
type ProgressAssessmentDTO struct {
	Step     AssessmentStep         `json:"step" binding:"required"`
	Decision Decision               `json:"decision" binding:"required"`
	Comments string                 `json:"comments"`
	Snapshot RecommendationSnapshot `json:"snapshot"`
}

// SaveStepNotesDTO persists work-in-progress decision/comment fields for a
// step without progressing the workflow.
type SaveStepNotesDTO struct {
	Step     AssessmentStep `json:"step" binding:"required"`
	Decision Decision       `json:"decision" binding:"required"`
	Comments string         `json:"comments"`
}

// CreateHomeVisitDTO records a verification visit.
type CreateHomeVisitDTO struct {
	VisitDate time.Time `json:"visitDate" binding:"required"`
	Findings  string    `json:"findings"`
	Verified  bool      `json:"verified"`
}

// HouseholdFilter narrows household list queries.
type HouseholdFilter struct {
	ProgramStatus  ProgramStatus
	AssessmentStep *AssessmentStep
	District       string
	Offset         *int
	Limit          *int
}

// RegistryApplication is one (household, membership role) pair linked to a
// registry person, in the order applications were encountered.
type RegistryApplication struct {
	HouseholdID     string     `json:"householdId"`
	ApplicationCode string     `json:"applicationCode"`
	Role            MemberRole `json:"role"`
}

// RegistryPerson is one deduplicated natural person across all household
// applications.
type RegistryPerson struct {
	NationalID   *string               `json:"nationalId"`
	FirstName    string                `json:"firstName"`
	LastName     string                `json:"lastName"`
	DateOfBirth  time.Time             `json:"dateOfBirth"`
	Applications []RegistryApplication `json:"applications"`
}

// DuplicateLookupResult is the outcome of a national-ID duplicate check at
// intake time.
type DuplicateLookupResult struct {
	Found     bool       `json:"found"`
	Member    *Member    `json:"member,omitempty"`
	Household *Household `json:"household,omitempty"`
	// AllMembers lists every member of the matched household so the intake
	// officer can see the full family composition.
	AllMembers []Member `json:"allMembers,omitempty"`
}
