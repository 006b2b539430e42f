package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/cache"
	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create creates a new course and invalidates catalog listings
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.helpers.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Catalog, "list:*")
	return nil
}

// GetByID retrieves a course by ID with caching
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := c.helpers.getDB(tx).WithContext(ctx).First(&dbCourse, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

// GetByIDWithLessons retrieves a course with its lessons ordered ascending
func (c *CoursePostgreSQL) GetByIDWithLessons(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	err := c.helpers.getDB(tx).WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.\"order\" ASC")
		}).
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns the filtered catalog, most-recently-created first, served
// through the catalog cache
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.cacheManager.Catalog.CacheOrExecute(ctx, catalogListKey(filters), &courses, cache.CatalogCacheConfig.TTL, func() (interface{}, error) {
		return c.listFromDB(ctx, tx, filters)
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CoursePostgreSQL) listFromDB(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, error) {
	query := c.helpers.getDB(tx).WithContext(ctx).Model(&models.Course{})

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.Search != "" {
		pattern := "%" + escapeLikePattern(filters.Search) + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var courses []*models.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// catalogListKey derives the cache key for a filtered listing. Every key
// shares the "list:" prefix the mutation paths invalidate on.
func catalogListKey(filters repositories.CourseFilters) string {
	level := ""
	if filters.Level != nil {
		level = string(*filters.Level)
	}
	return fmt.Sprintf("list:%s|%s|%s", filters.Category, level, filters.Search)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern neutralizes LIKE wildcards in user-supplied search text.
func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

// ListAll returns the entire catalog, most-recently-created first
func (c *CoursePostgreSQL) ListAll(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	return c.List(ctx, tx, repositories.CourseFilters{})
}

// ListByCategory returns up to limit courses in a category, excluding the
// given course ids
func (c *CoursePostgreSQL) ListByCategory(ctx context.Context, tx *gorm.DB, category string, excludeIDs []string, limit int) ([]*models.Course, error) {
	query := c.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("category = ?", category)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var courses []*models.Course
	if err := query.Order("created_at DESC").Limit(limit).Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses by category: %w", err)
	}
	return courses, nil
}

// ListExcluding returns courses not in excludeIDs. A limit of zero or less
// returns all of them.
func (c *CoursePostgreSQL) ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []string, limit int) ([]*models.Course, error) {
	query := c.helpers.getDB(tx).WithContext(ctx).Model(&models.Course{})
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var courses []*models.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// GetByIDs returns the courses matching ids; unknown ids are dropped
func (c *CoursePostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []*models.Course
	if err := c.helpers.getDB(tx).WithContext(ctx).Find(&courses, "id IN ?", ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}
	return courses, nil
}

// Update updates a course and invalidates its caches
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	err := c.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", course.ID).
		Updates(map[string]interface{}{
			"title":       course.Title,
			"description": course.Description,
			"instructor":  course.Instructor,
			"category":    course.Category,
			"duration":    course.Duration,
			"level":       course.Level,
			"image_url":   course.ImageURL,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

// Delete removes a course and invalidates its caches. Cascading lesson and
// enrollment deletes run in the caller's transaction.
func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if err := c.helpers.getDB(tx).WithContext(ctx).Delete(&models.Course{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

// LessonCounts returns lesson counts grouped by course id
func (c *CoursePostgreSQL) LessonCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	return c.countsByCourse(ctx, tx, &models.Lesson{}, "lessons", courseIDs)
}

// EnrollmentCounts returns enrollment counts grouped by course id
func (c *CoursePostgreSQL) EnrollmentCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	return c.countsByCourse(ctx, tx, &models.Enrollment{}, "enrollments", courseIDs)
}

type courseCount struct {
	CourseID string
	Total    int64
}

// countsByCourse serves counters from the stats cache and queries only the
// missing course ids
func (c *CoursePostgreSQL) countsByCourse(ctx context.Context, tx *gorm.DB, model interface{}, kind string, courseIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	missing := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		var cached int64
		if err := c.cacheManager.Stats.Get(ctx, statsKey(id, kind), &cached); err == nil {
			counts[id] = cached
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return counts, nil
	}

	var rows []courseCount
	err := c.helpers.getDB(tx).WithContext(ctx).
		Model(model).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", missing).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by course: %w", err)
	}

	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	// Absent rows cache as zero.
	for _, id := range missing {
		cache.SafeSet(ctx, c.cacheManager.Stats, statsKey(id, kind), counts[id], cache.StatsCacheConfig.TTL)
	}
	return counts, nil
}

func statsKey(courseID, kind string) string {
	return fmt.Sprintf("course:%s:%s", courseID, kind)
}
