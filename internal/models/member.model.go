package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "Active"
	MemberStatusInactive MemberStatus = "Inactive"
	MemberStatusDeceased MemberStatus = "Deceased"
)

type MemberGroup string

const (
	MemberGroupLegion    MemberGroup = "Legion"
	MemberGroupAuxiliary MemberGroup = "Auxiliary"
	MemberGroupSons      MemberGroup = "Sons"
	MemberGroupRiders    MemberGroup = "Riders"
)

const MemberEmailPlaceholder = "no-email@placeholder.local"

// NormalizeMemberStatus maps unknown or missing status values to Active.
// Shared by member creation and CSV import.
func NormalizeMemberStatus(status string) MemberStatus {
	switch MemberStatus(status) {
	case MemberStatusActive, MemberStatusInactive, MemberStatusDeceased:
		return MemberStatus(status)
	default:
		return MemberStatusActive
	}
}

// NormalizeMemberGroup maps unknown or missing group values to Legion.
func NormalizeMemberGroup(group string) MemberGroup {
	switch MemberGroup(group) {
	case MemberGroupLegion, MemberGroupAuxiliary, MemberGroupSons, MemberGroupRiders:
		return MemberGroup(group)
	default:
		return MemberGroupLegion
	}
}

type Member struct {
	BaseUUIDModel
	// MemberID is the human-chosen identifier (badge/card number), unique
	// across the registry. Checkout and package records reference it as a
	// bare string rather than a foreign key.
	MemberID string       `gorm:"type:text;not null;uniqueIndex:idx_members_member_id" json:"memberId"`
	Name     string       `gorm:"type:text;not null"                                   json:"name"`
	Phone    string       `gorm:"type:text"                                            json:"phone"`
	Email    string       `gorm:"type:text"                                            json:"email"`
	Address  string       `gorm:"type:text"                                            json:"address"`
	Notes    string       `gorm:"type:text"                                            json:"notes,omitempty"`
	JoinDate time.Time    `gorm:"type:timestamp"                                       json:"joinDate"`
	Branch   string       `gorm:"type:text"                                            json:"branch,omitempty"`
	Status   MemberStatus `gorm:"type:text;default:'Active'"                           json:"status"`
	Group    MemberGroup  `gorm:"type:text;default:'Legion'"                           json:"group"`

	// Associations holds the ids of linked members (spouse, sponsor, next of
	// kin). Links are maintained symmetrically on both rows.
	Associations datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"associations"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) (err error) {
	if m.MemberID == "" {
		return gorm.ErrInvalidValue
	}
	if m.Name == "" {
		return gorm.ErrInvalidValue
	}
	if m.Email == "" {
		m.Email = MemberEmailPlaceholder
	}
	if m.Status == "" {
		m.Status = MemberStatusActive
	}
	if m.Group == "" {
		m.Group = MemberGroupLegion
	}
	return nil
}

func (m *Member) BeforeUpdate(tx *gorm.DB) (err error) {
	if m.MemberID == "" {
		return gorm.ErrInvalidValue
	}
	if m.Name == "" {
		return gorm.ErrInvalidValue
	}
	return nil
}
