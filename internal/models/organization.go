package models

import (
	"time"

	"gorm.io/gorm"
)

// MembershipRole represents a user's role inside an organization
type MembershipRole string

const (
	OrgRoleMember  MembershipRole = "member"
	OrgRoleManager MembershipRole = "manager"
	OrgRoleAdmin   MembershipRole = "admin"
)

// Organization is the tenant grouping; trial flags mirror the user-level
// entitlement fields so the expiry sweep can cover both.
type Organization struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	IsPremium   bool       `json:"is_premium" gorm:"default:false"`
	IsOnTrial   bool       `json:"is_on_trial" gorm:"default:false"`
	TrialEndsAt *time.Time `json:"trial_ends_at"`
	gorm.Model
}

// TableName specifies the table name for Organization Model
func (Organization) TableName() string {
	return "organizations"
}

// Membership relates a user to an organization with a role.
// A user holds at most one membership per organization.
type Membership struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	UserID         string         `json:"user_id" gorm:"column:user_id;uniqueIndex:idx_org_membership;not null"`
	OrganizationID string         `json:"organization_id" gorm:"column:organization_id;uniqueIndex:idx_org_membership;not null"`
	Role           MembershipRole `json:"role" gorm:"not null;default:'member'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name for Membership Model
func (Membership) TableName() string {
	return "memberships"
}
