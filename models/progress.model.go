package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment is one row per (user, course) roster membership. The composite
// unique index is what makes a concurrent double-enroll a constraint violation
// instead of a silent duplicate.
type Enrollment struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	User     User   `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Course   Course `json:"course,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

// Progress tracks a user's completion state for one course. At most one row
// per (user, course) pair.
type Progress struct {
	gorm.Model
	UserID       uint               `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_course"`
	CourseID     uint               `json:"course_id" gorm:"not null;uniqueIndex:idx_progress_user_course"`
	Percent      float64            `json:"progress" gorm:"default:0"` // 0-100
	LastAccessed *time.Time         `json:"last_accessed"`
	Completed    []CompletedContent `json:"completed_content,omitempty" gorm:"foreignKey:ProgressID"`
}

// CompletedContent marks one content item as done. The unique index keeps
// repeated completion calls idempotent.
type CompletedContent struct {
	gorm.Model
	ProgressID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_completed_progress_content"`
	ContentItemID uint      `json:"content_id" gorm:"not null;uniqueIndex:idx_completed_progress_content"`
	CompletedAt   time.Time `json:"completed_at"`
}
