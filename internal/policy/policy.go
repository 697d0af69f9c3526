package policy

import (
	"errors"

	"taskflow-api/internal/httperr"
	"taskflow-api/internal/models"

	"gorm.io/gorm"
)

// The authorization engine is stateless: every decision is computed fresh
// against the current membership and partnership rows, never cached.

// AuthorizeCreate gates task creation. Creating a task for yourself is
// always allowed. Assigning someone else requires an organization where the
// creator holds an admin or manager membership and the assignee is a member.
func AuthorizeCreate(db *gorm.DB, userID string, assigneeID, organizationID *string) error {
	if assigneeID == nil || *assigneeID == userID {
		return nil
	}
	if organizationID == nil {
		return httperr.Forbidden("You cannot assign tasks outside of an organization.")
	}

	var creator models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", userID, *organizationID).
		First(&creator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Forbidden("Both you and the assignee must be members of the organization.")
		}
		return err
	}
	var assignee models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", *assigneeID, *organizationID).
		First(&assignee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Forbidden("Both you and the assignee must be members of the organization.")
		}
		return err
	}

	if creator.Role != models.OrgRoleAdmin && creator.Role != models.OrgRoleManager {
		return httperr.Forbidden("You must be an admin or manager to assign tasks.")
	}
	return nil
}

// AuthorizeUpdate gates task mutation. Rules are evaluated in strict order,
// first match wins:
//  1. completed tasks are never editable, regardless of role
//  2. personal task (no organization): owner only
//  3. team task: org admin of the team's organization, or team manager/assistant
//  4. organization task without a team: org admin only
func AuthorizeUpdate(db *gorm.DB, userID string, task *models.Task) error {
	if task.Status == models.StatusCompleted {
		return httperr.Forbidden("Completed tasks cannot be updated.")
	}

	if task.OrganizationID == nil {
		if task.OwnerID == userID {
			return nil
		}
		return httperr.Forbidden("You do not have permission to edit this task.")
	}

	if task.TeamID != nil {
		var team models.Team
		if err := db.First(&team, "id = ?", *task.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.NotFound("Team not found")
			}
			return err
		}
		admin, err := isOrgAdmin(db, userID, team.OrganizationID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
		var lead int64
		if err := db.Model(&models.TeamMembership{}).
			Where("user_id = ? AND team_id = ? AND role IN ?",
				userID, *task.TeamID, []models.TeamRole{models.TeamRoleManager, models.TeamRoleAssistant}).
			Count(&lead).Error; err != nil {
			return err
		}
		if lead > 0 {
			return nil
		}
		return httperr.Forbidden("You do not have permission to edit this task.")
	}

	admin, err := isOrgAdmin(db, userID, *task.OrganizationID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}
	return httperr.Forbidden("You do not have permission to edit this task.")
}

// AuthorizeDelete gates task deletion. Eligibility (owner for personal
// tasks, org admin for organization tasks) is checked first; a completed
// task is then rejected regardless of who asks.
func AuthorizeDelete(db *gorm.DB, userID string, task *models.Task) error {
	if task.OrganizationID == nil {
		if task.OwnerID != userID {
			return httperr.Forbidden("You do not have permission to delete this personal task.")
		}
	} else {
		admin, err := isOrgAdmin(db, userID, *task.OrganizationID)
		if err != nil {
			return err
		}
		if !admin {
			return httperr.Forbidden("You must be an admin to delete this task.")
		}
	}

	if task.Status == models.StatusCompleted {
		return httperr.Forbidden("Completed tasks cannot be deleted.")
	}
	return nil
}

// AuthorizeComment gates commenting: task owner, organization member,
// attached accountability partner, or team member.
func AuthorizeComment(db *gorm.DB, userID string, task *models.Task) error {
	if task.OwnerID == userID {
		return nil
	}

	if task.OrganizationID != nil {
		var n int64
		if err := db.Model(&models.Membership{}).
			Where("user_id = ? AND organization_id = ?", userID, *task.OrganizationID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}

	var n int64
	if err := db.Model(&models.TaskAccountability{}).
		Where("task_id = ? AND partner_id = ?", task.ID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if task.TeamID != nil {
		if err := db.Model(&models.TeamMembership{}).
			Where("user_id = ? AND team_id = ?", userID, *task.TeamID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}

	return httperr.Forbidden("You do not have permission to comment on this task.")
}

// AuthorizeCommentDelete allows only the comment's author to delete it,
// regardless of task-level permissions.
func AuthorizeCommentDelete(userID string, comment *models.TaskComment) error {
	if comment.AuthorID != userID {
		return httperr.Forbidden("You can only delete your own comments.")
	}
	return nil
}

// CanEdit is the advisory edit flag surfaced on task payloads. It delegates
// to AuthorizeUpdate so the flag and the enforcement path cannot drift.
func CanEdit(db *gorm.DB, userID string, task *models.Task) bool {
	return AuthorizeUpdate(db, userID, task) == nil
}

func isOrgAdmin(db *gorm.DB, userID, organizationID string) (bool, error) {
	var n int64
	err := db.Model(&models.Membership{}).
		Where("user_id = ? AND organization_id = ? AND role = ?", userID, organizationID, models.OrgRoleAdmin).
		Count(&n).Error
	return n > 0, err
}
