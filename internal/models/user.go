package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system. Email is the login identifier.
type User struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Email       string `json:"email" gorm:"unique;not null"`
	Username    string `json:"username" gorm:"not null"`
	Password    string `json:"-" gorm:"not null"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`

	IsPremium      bool       `json:"is_premium" gorm:"default:false"`
	IsOnTrial      bool       `json:"is_on_trial" gorm:"default:false"`
	TrialStartDate *time.Time `json:"trial_start_date"`
	TrialEndsAt    *time.Time `json:"trial_ends_at"`

	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
