package model

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole is the person's relationship to the household head.
type MemberRole string

const (
	MemberRoleHead      MemberRole = "head"
	MemberRoleSpouse    MemberRole = "spouse"
	MemberRoleChild     MemberRole = "child"
	MemberRoleDependent MemberRole = "dependent"
	MemberRoleOther     MemberRole = "other"
)

// Member represents a natural person belonging to one household application.
// The same real-world person may appear in several applications over time;
// the registry service matches them across households by national ID.
type Member struct {
	BaseModel
	HouseholdID uuid.UUID  `gorm:"type:uuid;column:household_id;not null;index" json:"householdId"`
	FirstName   string     `gorm:"type:varchar(100);column:first_name;not null" json:"firstName"`
	LastName    string     `gorm:"type:varchar(100);column:last_name;not null" json:"lastName"`
	NationalID  *string    `gorm:"type:varchar(30);column:national_id;index" json:"nationalId"` // Authoritative identity key when present
	DateOfBirth time.Time  `gorm:"type:date;column:date_of_birth;not null" json:"dateOfBirth"`
	Sex         string     `gorm:"type:varchar(10);column:sex" json:"sex"`
	Role        MemberRole `gorm:"type:varchar(20);column:role;not null" json:"role"`
	Disabled    bool       `gorm:"column:disabled;not null;default:false" json:"disabled"`

	Household *Household `gorm:"foreignKey:HouseholdID;references:ID" json:"-"`
}

func (m *Member) TableName() string {
	return "household_members"
}
