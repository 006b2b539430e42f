package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/cache"
	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewEnrollmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create inserts an enrollment. A duplicate (user, course) pair surfaces as
// gorm.ErrDuplicatedKey from the composite unique index; the caller maps it
// to its conflict error. No wrapping here so errors.Is keeps working.
func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if err := e.helpers.getDB(tx).WithContext(ctx).Create(enrollment).Error; err != nil {
		return err
	}
	cache.InvalidateCourseStats(ctx, e.cacheManager, enrollment.CourseID)
	return nil
}

func (e *EnrollmentPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.helpers.getDB(tx).WithContext(ctx).
		First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByUser returns a user's enrollments, most-recently-enrolled first
func (e *EnrollmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.helpers.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	err := e.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{
			"progress":  enrollment.Progress,
			"completed": enrollment.Completed,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	return nil
}

// DeleteByUserAndCourse removes all matching ledger rows and reports how
// many were removed. Zero matches is not an error (idempotent unenroll).
func (e *EnrollmentPostgreSQL) DeleteByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (int64, error) {
	result := e.helpers.getDB(tx).WithContext(ctx).
		Delete(&models.Enrollment{}, "user_id = ? AND course_id = ?", userID, courseID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete enrollment: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidateCourseStats(ctx, e.cacheManager, courseID)
	}
	return result.RowsAffected, nil
}

// DeleteByCourse removes every enrollment of a course; used by the course
// delete cascade.
func (e *EnrollmentPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error {
	if err := e.helpers.getDB(tx).WithContext(ctx).Delete(&models.Enrollment{}, "course_id = ?", courseID).Error; err != nil {
		return fmt.Errorf("failed to delete enrollments for course: %w", err)
	}
	cache.InvalidateCourseStats(ctx, e.cacheManager, courseID)
	return nil
}

func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.helpers.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments for course: %w", err)
	}
	return enrollments, nil
}
