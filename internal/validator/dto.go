package validator

import (
	"github.com/learnhub/course-service/internal/models"
)

// RegisterRequest represents the request structure for user registration
type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

// LoginRequest represents the request structure for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// CourseCreateRequest represents the request structure for creating courses.
// Updates reuse the same shape: course updates are full replacements.
type CourseCreateRequest struct {
	Title       string             `json:"title" validate:"required,min=3,max=200"`
	Description string             `json:"description" validate:"required,min=10"`
	Instructor  string             `json:"instructor" validate:"required,min=2,max=100"`
	Category    string             `json:"category" validate:"required,min=2,max=100"`
	Duration    int                `json:"duration" validate:"required,min=1"`
	Level       models.CourseLevel `json:"level" validate:"required,course_level"`
	ImageURL    string             `json:"imageUrl" validate:"omitempty,url"`
}

type CourseUpdateRequest = CourseCreateRequest

// LessonCreateRequest represents the request structure for creating lessons.
// Lesson updates are full replacements as well.
type LessonCreateRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Content  string `json:"content" validate:"required,min=10"`
	Order    int    `json:"order" validate:"required,min=1"`
	VideoURL string `json:"videoUrl" validate:"omitempty,url"`
	Duration int    `json:"duration" validate:"required,min=1"`
	CourseID string `json:"courseId" validate:"required"`
}

type LessonUpdateRequest = LessonCreateRequest

// EnrollRequest represents the request structure for enrolling in a course
type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// ProgressUpdateRequest represents the request structure for updating
// enrollment progress
type ProgressUpdateRequest struct {
	Progress int `json:"progress" validate:"min=0,max=100"`
}
