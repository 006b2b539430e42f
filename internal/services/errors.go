package services

import (
	"errors"
	"fmt"

	"github.com/learnhub/course-service/internal/validator"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	ErrInvalidID          = errors.New("invalid id format")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
)

// ValidationErrors re-exports the validator type so handlers only depend on
// the services package.
type ValidationErrors = validator.ValidationErrors

// PermissionError carries enough context to log who was denied what.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}
