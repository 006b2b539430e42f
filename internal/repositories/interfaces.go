package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

// CourseFilters narrows catalog listings. All filters are conjunctive:
// category and level are exact matches, Search is a case-insensitive
// substring match against title or description.
type CourseFilters struct {
	Category string
	Level    *models.CourseLevel
	Search   string
}

// LessonFilters narrows lesson listings.
type LessonFilters struct {
	CourseID string
}

// ===== REPOSITORY INTERFACES =====

// Every method takes an optional transaction handle; a nil tx falls back to
// the repository's own connection.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	GetByIDWithLessons(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*models.Course, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, category string, excludeIDs []string, limit int) ([]*models.Course, error)
	ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []string, limit int) ([]*models.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Aggregate counters for response decoration
	LessonCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error)
	EnrollmentCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error)
}

type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lesson, error)
	List(ctx context.Context, tx *gorm.DB, filters LessonFilters) ([]*models.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.Enrollment, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error)
	Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	DeleteByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (int64, error)
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Enrollment, error)
}

type RecommendationLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.RecommendationLog) error
}
