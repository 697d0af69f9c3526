package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Task represents a task in the system. Owner is set at creation and never
// changes. A task carrying a team also carries the team's organization.
type Task struct {
	ID             string       `json:"id" gorm:"primaryKey"`
	Title          string       `json:"title" gorm:"not null"`
	Description    string       `json:"description"`
	OwnerID        string       `json:"owner_id" gorm:"column:owner_id;index;not null"`
	AssigneeID     *string      `json:"assignee_id" gorm:"column:assignee_id;index"`
	TeamID         *string      `json:"team_id" gorm:"column:team_id;index"`
	OrganizationID *string      `json:"organization_id" gorm:"column:organization_id;index"`
	Status         TaskStatus   `json:"status" gorm:"not null;default:'pending'"`
	Priority       TaskPriority `json:"priority" gorm:"not null;default:'medium'"`
	DueDate        *time.Time   `json:"due_date" gorm:"column:due_date"`
	CompletedAt    *time.Time   `json:"completed_at" gorm:"column:completed_at"`
	gorm.Model
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskComment is a comment on a task. Author is immutable.
type TaskComment struct {
	ID       string `json:"id" gorm:"primaryKey"`
	TaskID   string `json:"task_id" gorm:"column:task_id;index;not null"`
	AuthorID string `json:"author_id" gorm:"column:author_id;not null"`
	Text     string `json:"text" gorm:"not null"`
	gorm.Model
}

// TableName specifies the table name for TaskComment Model
func (TaskComment) TableName() string {
	return "task_comments"
}

// TaskAttachment references a stored file linked to a task. Size and MIME
// type are validated once, at creation.
type TaskAttachment struct {
	ID           string `json:"id" gorm:"primaryKey"`
	TaskID       string `json:"task_id" gorm:"column:task_id;index;not null"`
	FileRef      string `json:"file_ref" gorm:"column:file_ref;not null"`
	FileName     string `json:"file_name" gorm:"column:file_name"`
	ContentType  string `json:"content_type" gorm:"column:content_type"`
	Size         int64  `json:"size"`
	UploadedByID string `json:"uploaded_by_id" gorm:"column:uploaded_by_id;not null"`
	gorm.Model
}

// TableName specifies the table name for TaskAttachment Model
func (TaskAttachment) TableName() string {
	return "task_attachments"
}
