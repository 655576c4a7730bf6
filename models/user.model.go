package models

import "gorm.io/gorm"

// User roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

type User struct {
	gorm.Model
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"unique;not null"`
	Password     string `json:"-"` // bcrypt hash, empty for Google-only accounts
	GoogleID     string `json:"-" gorm:"default:''"`
	ProfileImage string `json:"profile_image" gorm:"default:''"`
	Role         string `json:"role" gorm:"default:'student'"` // student, instructor, admin
}
