package domain

import "fmt"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ValidateRole returns an error if r is not a recognized role.
func ValidateRole(r Role) error {
	switch r {
	case RoleAdmin, RoleMember:
		return nil
	}
	return fmt.Errorf("invalid role %q: must be one of [admin member]", r)
}

type Organization struct {
	Model
	Name      string               `gorm:"not null"`
	CreatedBy uint                 `gorm:"not null"`
	Members   []OrganizationMember `gorm:"constraint:OnDelete:CASCADE"`
}

type OrganizationMember struct {
	Model
	OrganizationID uint `gorm:"not null;uniqueIndex:idx_org_member"`
	UserID         uint `gorm:"not null;uniqueIndex:idx_org_member;index"`
	Role           Role `gorm:"type:varchar(16);not null;default:member"`
	User           User `gorm:"constraint:OnDelete:CASCADE"`
}
