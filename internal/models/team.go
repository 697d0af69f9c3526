package models

import (
	"time"

	"gorm.io/gorm"
)

// TeamRole represents a user's role inside a team
type TeamRole string

const (
	TeamRoleMember    TeamRole = "member"
	TeamRoleManager   TeamRole = "manager"
	TeamRoleAssistant TeamRole = "assistant"
)

// Team is a sub-group belonging to exactly one organization.
type Team struct {
	ID             string `json:"id" gorm:"primaryKey"`
	Name           string `json:"name" gorm:"not null"`
	OrganizationID string `json:"organization_id" gorm:"column:organization_id;index;not null"`
	gorm.Model
}

// TableName specifies the table name for Team Model
func (Team) TableName() string {
	return "teams"
}

// TeamMembership relates a user to a team with a role, unique per (user, team).
type TeamMembership struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"column:user_id;uniqueIndex:idx_team_membership;not null"`
	TeamID    string    `json:"team_id" gorm:"column:team_id;uniqueIndex:idx_team_membership;not null"`
	Role      TeamRole  `json:"role" gorm:"not null;default:'member'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for TeamMembership Model
func (TeamMembership) TableName() string {
	return "team_memberships"
}
