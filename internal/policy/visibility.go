package policy

import (
	"time"

	"taskflow-api/internal/httperr"
	"taskflow-api/internal/models"

	"gorm.io/gorm"
)

// ViewCategory names a relationship between viewer and task used to scope
// task listings.
type ViewCategory string

const (
	ViewOwnedByMe      ViewCategory = "owned_by_me"
	ViewAssignedByMe   ViewCategory = "assigned_by_me"
	ViewAssigned       ViewCategory = "assigned"
	ViewAccountability ViewCategory = "accountability"
	ViewTeam           ViewCategory = "team"
	ViewDefault        ViewCategory = ""
)

// VisibleTasks returns a query over tasks matching the category for the
// viewer. The empty category is the broadest set: anything related to the
// user through ownership, assignment, organization, team, or accountability.
func VisibleTasks(db *gorm.DB, userID string, category ViewCategory) (*gorm.DB, error) {
	q := db.Model(&models.Task{})

	switch category {
	case ViewOwnedByMe:
		// Created by the user for themselves (or unassigned).
		return q.Where("owner_id = ? AND (assignee_id = ? OR assignee_id IS NULL)", userID, userID), nil

	case ViewAssignedByMe:
		// Created by the user and assigned to someone else.
		return q.Where("owner_id = ? AND assignee_id IS NOT NULL AND assignee_id <> ?", userID, userID), nil

	case ViewAssigned:
		// Assigned to the user by someone else.
		return q.Where("assignee_id = ? AND owner_id <> ?", userID, userID), nil

	case ViewAccountability:
		return q.Where("id IN (?)", accountabilityTaskIDs(db, userID)), nil

	case ViewTeam:
		return q.Where("team_id IN (?)", teamIDs(db, userID)), nil

	case ViewDefault:
		return q.Where(
			"owner_id = ? OR assignee_id = ? OR organization_id IN (?) OR team_id IN (?) OR id IN (?)",
			userID, userID, orgIDs(db, userID), teamIDs(db, userID), accountabilityTaskIDs(db, userID),
		), nil

	default:
		return nil, httperr.Validation("Unknown task view category.")
	}
}

// FilterSearch narrows a task query to rows whose title or description
// contains the term.
func FilterSearch(q *gorm.DB, term string) *gorm.DB {
	pattern := "%" + term + "%"
	return q.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
}

// FilterPriority narrows a task query to an exact priority match.
func FilterPriority(q *gorm.DB, priority models.TaskPriority) *gorm.DB {
	return q.Where("priority = ?", priority)
}

// FilterDueDate narrows a task query to tasks due on the given calendar
// day, ignoring time-of-day.
func FilterDueDate(q *gorm.DB, day time.Time) *gorm.DB {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	return q.Where("due_date >= ? AND due_date < ?", start, end)
}

// OrderByCreation applies the stable listing order.
func OrderByCreation(q *gorm.DB) *gorm.DB {
	return q.Order("created_at asc, id asc")
}

func orgIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.Membership{}).Select("organization_id").Where("user_id = ?", userID)
}

func teamIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.TeamMembership{}).Select("team_id").Where("user_id = ?", userID)
}

func accountabilityTaskIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.TaskAccountability{}).Select("task_id").Where("partner_id = ?", userID)
}
