package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOfficer  UserRole = "officer"  // compliance officer: assessments, RMS, gaps
	RoleEngineer UserRole = "engineer" // controls and events
	RoleViewer   UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleOfficer, RoleEngineer, RoleViewer:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;size:50;not null" json:"username" validate:"required,min=3,max=50"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role" validate:"required,enum"`
}
