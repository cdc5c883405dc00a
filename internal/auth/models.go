package auth

import (
	"github.com/OpenSAMS/sams/internal/household/model"
)

// Role is a reviewer's position in the organisation. The four workflow
// roles mirror the assessment steps; intake officers and admins sit outside
// the approval chain.
type Role string

const (
	RoleIntakeOfficer      Role = "intake_officer"
	RoleCoordinator        Role = "coordinator"
	RoleDirector           Role = "director"
	RolePermanentSecretary Role = "permanent_secretary"
	RoleMinister           Role = "minister"
	RoleAdmin              Role = "admin"
)

// Reviewer is an authenticated user of the system. Tokens are opaque and
// issued out of band.
type Reviewer struct {
	model.BaseModel
	Name     string `gorm:"type:varchar(150);column:name;not null" json:"name"`
	Role     Role   `gorm:"type:varchar(30);column:role;not null" json:"role"`
	APIToken string `gorm:"type:varchar(100);column:api_token;not null;uniqueIndex" json:"-"`
	Active   bool   `gorm:"column:active;not null;default:true" json:"active"`
}

func (r *Reviewer) TableName() string {
	return "reviewers"
}

// stepRoles maps each assessment step to the role allowed to decide it.
var stepRoles = map[model.AssessmentStep]Role{
	model.AssessmentStepCoordinator:        RoleCoordinator,
	model.AssessmentStepDirector:           RoleDirector,
	model.AssessmentStepPermanentSecretary: RolePermanentSecretary,
	model.AssessmentStepMinister:           RoleMinister,
}

// CanActOnStep reports whether a reviewer with the given role may decide the
// given assessment step. Admins may act on any step.
func CanActOnStep(role Role, step model.AssessmentStep) bool {
	if role == RoleAdmin {
		return true
	}
	required, ok := stepRoles[step]
	return ok && role == required
}
