package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository bundles all entity repositories behind a single handle.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Lesson() LessonRepository
	Enrollment() EnrollmentRepository
	RecommendationLog() RecommendationLogRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err is a missing-record error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique-constraint violation.
// Requires TranslateError on the gorm config.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
