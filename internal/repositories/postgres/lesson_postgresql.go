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

type LessonPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewLessonPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.LessonRepository {
	return &LessonPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (l *LessonPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if err := l.helpers.getDB(tx).WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	cache.InvalidateCourseStats(ctx, l.cacheManager, lesson.CourseID)
	return nil
}

func (l *LessonPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.helpers.getDB(tx).WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// List returns lessons ascending by their position in the course
func (l *LessonPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.LessonFilters) ([]*models.Lesson, error) {
	query := l.helpers.getDB(tx).WithContext(ctx).Model(&models.Lesson{})
	if filters.CourseID != "" {
		query = query.Where("course_id = ?", filters.CourseID)
	}

	var lessons []*models.Lesson
	if err := query.Order("\"order\" ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (l *LessonPostgreSQL) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	err := l.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", lesson.ID).
		Updates(map[string]interface{}{
			"title":     lesson.Title,
			"content":   lesson.Content,
			"order":     lesson.Order,
			"video_url": lesson.VideoURL,
			"duration":  lesson.Duration,
			"course_id": lesson.CourseID,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

func (l *LessonPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if err := l.helpers.getDB(tx).WithContext(ctx).Delete(&models.Lesson{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}

// DeleteByCourse removes every lesson of a course; used by the course
// delete cascade.
func (l *LessonPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error {
	if err := l.helpers.getDB(tx).WithContext(ctx).Delete(&models.Lesson{}, "course_id = ?", courseID).Error; err != nil {
		return fmt.Errorf("failed to delete lessons for course: %w", err)
	}
	cache.InvalidateCourseStats(ctx, l.cacheManager, courseID)
	return nil
}
