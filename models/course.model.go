package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Content item types
const (
	ContentVideo    = "video"
	ContentDocument = "document"
	ContentQuiz     = "quiz"
	ContentImage    = "image"
	ContentText     = "text"
)

// Course represents a learning course authored by an instructor
type Course struct {
	gorm.Model
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	CoverImage   string        `json:"cover_image"`
	InstructorID uint          `json:"instructor_id" gorm:"index;not null"`
	Instructor   User          `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Content      []ContentItem `json:"content,omitempty" gorm:"foreignKey:CourseID"`
}

// ContentItem is a single unit of course material. Position defines the order
// within the course; the sequence length is the progress denominator.
type ContentItem struct {
	gorm.Model
	CourseID    uint           `json:"course_id" gorm:"index;not null"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"` // video, document, quiz, image, text
	Data        datatypes.JSON `json:"data,omitempty"`
	Position    int            `json:"position" gorm:"default:0"`
}
