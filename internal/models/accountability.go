package models

import (
	"time"
)

// PartnershipStatus represents the state of a partner request
type PartnershipStatus string

const (
	PartnershipPending  PartnershipStatus = "pending"
	PartnershipAccepted PartnershipStatus = "accepted"
	PartnershipRejected PartnershipStatus = "rejected"
)

// AccountabilityPartner is a directional partner request. The ordered
// (requester, partner) pair is unique; the reverse pair is a distinct
// record. Rows are hard-deleted so the unique index stays accurate.
type AccountabilityPartner struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	RequesterID string            `json:"requester_id" gorm:"column:requester_id;uniqueIndex:idx_partner_pair;not null"`
	PartnerID   string            `json:"partner_id" gorm:"column:partner_id;uniqueIndex:idx_partner_pair;not null"`
	Status      PartnershipStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for AccountabilityPartner Model
func (AccountabilityPartner) TableName() string {
	return "accountability_partners"
}

// TaskAccountability attaches a partner to a specific task, unique per
// (task, partner). Attachment does not require an accepted partnership.
type TaskAccountability struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"task_id" gorm:"column:task_id;uniqueIndex:idx_task_partner;not null"`
	PartnerID string    `json:"partner_id" gorm:"column:partner_id;uniqueIndex:idx_task_partner;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for TaskAccountability Model
func (TaskAccountability) TableName() string {
	return "task_accountabilities"
}
