package model

// AssessmentStep represents a household application's position in the
// approval chain. A household with no step (NULL column) is still in the
// intake pool and has not entered the workflow.
type AssessmentStep string

const (
	AssessmentStepCoordinator        AssessmentStep = "coordinator"
	AssessmentStepDirector           AssessmentStep = "director"
	AssessmentStepPermanentSecretary AssessmentStep = "permanent_secretary"
	AssessmentStepMinister           AssessmentStep = "minister"
	AssessmentStepCompleted          AssessmentStep = "completed" // Terminal marker, no reviewer acts on it
)

// ProgramStatus represents the household's standing in the assistance program.
type ProgramStatus string

const (
	ProgramStatusPendingAssessment     ProgramStatus = "pending_assessment"
	ProgramStatusPendingAdditionalInfo ProgramStatus = "pending_additional_info" // Returned to intake for more information
	ProgramStatusEnrolled              ProgramStatus = "enrolled"
	ProgramStatusRejected              ProgramStatus = "rejected"
	ProgramStatusIneligible            ProgramStatus = "ineligible" // Set by the eligibility screening path, not by the workflow
	ProgramStatusExited                ProgramStatus = "exited"
)

// Decision is a reviewer's verdict at a workflow step. The vocabulary is the
// same at every step; only the minister's agree/disagree carry terminal
// program-status semantics.
type Decision string

const (
	DecisionAgree               Decision = "agree"
	DecisionDisagree            Decision = "disagree"
	DecisionRequiresFurtherInfo Decision = "requires_further_info"
)

// BenefitModality is how an approved benefit is delivered.
type BenefitModality string

const (
	BenefitModalityCash    BenefitModality = "cash"
	BenefitModalityVoucher BenefitModality = "voucher"
	BenefitModalityInKind  BenefitModality = "in_kind"
)

// Household represents one application through the program's
// intake-to-decision pipeline.
type Household struct {
	BaseModel
	ApplicationCode string `gorm:"type:varchar(30);column:application_code;not null;uniqueIndex" json:"applicationCode"` // APP-<year>-<seq>, assigned at intake
	HouseholdCode   string `gorm:"type:varchar(30);column:household_code;not null;uniqueIndex" json:"householdCode"`     // HH-<year>-<seq>, assigned at intake

	HeadFirstName string `gorm:"type:varchar(100);column:head_first_name;not null" json:"headFirstName"`
	HeadLastName  string `gorm:"type:varchar(100);column:head_last_name;not null" json:"headLastName"`
	District      string `gorm:"type:varchar(100);column:district;not null" json:"district"`
	Village       string `gorm:"type:varchar(100);column:village" json:"village"`
	ContactPhone  string `gorm:"type:varchar(30);column:contact_phone" json:"contactPhone"`

	// Workflow state. AssessmentStep is nil while the household sits in the
	// intake pool; AssessmentCycle counts workflow entries so that history
	// entries from a pre- and post-return round can be told apart.
	AssessmentStep  *AssessmentStep `gorm:"type:varchar(30);column:assessment_step" json:"assessmentStep"`
	ProgramStatus   ProgramStatus   `gorm:"type:varchar(30);column:program_status;not null" json:"programStatus"`
	AssessmentCycle int             `gorm:"column:assessment_cycle;not null;default:0" json:"assessmentCycle"`

	// Per-step decision fields. Entering a later step never erases an
	// earlier step's decision.
	CoordinatorDecision        *Decision `gorm:"type:varchar(30);column:coordinator_decision" json:"coordinatorDecision"`
	CoordinatorComments        string    `gorm:"type:text;column:coordinator_comments" json:"coordinatorComments"`
	DirectorDecision           *Decision `gorm:"type:varchar(30);column:director_decision" json:"directorDecision"`
	DirectorComments           string    `gorm:"type:text;column:director_comments" json:"directorComments"`
	PermanentSecretaryDecision *Decision `gorm:"type:varchar(30);column:permanent_secretary_decision" json:"permanentSecretaryDecision"`
	PermanentSecretaryComments string    `gorm:"type:text;column:permanent_secretary_comments" json:"permanentSecretaryComments"`
	MinisterDecision           *Decision `gorm:"type:varchar(30);column:minister_decision" json:"ministerDecision"`
	MinisterComments           string    `gorm:"type:text;column:minister_comments" json:"ministerComments"`

	// Recommendation carried alongside the workflow. Set by reviewers but
	// never part of the branching logic.
	RecommendedAmount         float64         `gorm:"type:numeric(12,2);column:recommended_amount" json:"recommendedAmount"`
	RecommendedDurationMonths int             `gorm:"column:recommended_duration_months" json:"recommendedDurationMonths"`
	RecommendedModality       BenefitModality `gorm:"type:varchar(20);column:recommended_modality" json:"recommendedModality"`
	ComplementaryActivities   string          `gorm:"type:text;column:complementary_activities" json:"complementaryActivities"`

	// Relationships
	Members []Member `gorm:"foreignKey:HouseholdID;references:ID" json:"members,omitempty"`
}

func (h *Household) TableName() string {
	return "households"
}
