package services

import "errors"

// Domain errors returned by the progress service. Handlers match these with
// errors.Is and decide status codes; the service never writes HTTP responses.
var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrInvalidContent  = errors.New("content item does not belong to this course")

	// ErrConflict is reserved for optimistic-concurrency checks. Nothing
	// raises it yet.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrStorage wraps database transport failures so handlers can tell them
	// apart from domain errors without inspecting driver errors.
	ErrStorage = errors.New("storage unavailable")
)
