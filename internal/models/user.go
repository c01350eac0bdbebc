package models

import (
	"gorm.io/gorm"
)

// User represents a dashboard user allowed to add and refresh PRs
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"` // bcrypt hash
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
