package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SafeInvalidatePattern safely invalidates a cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeSet safely stores a value with logging
func SafeSet(ctx context.Context, helper *CacheHelper, key string, value interface{}, ttl time.Duration) {
	if err := helper.Set(ctx, key, value, ttl); err != nil {
		slog.ErrorContext(ctx, "Failed to set cache key",
			"error", err,
			"key", key)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateCourseCache invalidates all caches touched by a course mutation:
// the course record itself, every catalog listing, and its counters.
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID string) {
	SafeDelete(ctx, cm.Course, fmt.Sprintf("id:%s", courseID))
	SafeInvalidatePattern(ctx, cm.Catalog, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("course:%s:*", courseID))
}

// InvalidateCourseStats drops only the aggregate counters for a course.
// Enrollment churn does not change the course record or listings content.
func InvalidateCourseStats(ctx context.Context, cm *CacheManager, courseID string) {
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("course:%s:*", courseID))
}
