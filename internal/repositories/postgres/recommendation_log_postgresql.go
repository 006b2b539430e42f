package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
)

type RecommendationLogPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewRecommendationLogPostgreSQL(db *gorm.DB) repositories.RecommendationLogRepository {
	return &RecommendationLogPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *RecommendationLogPostgreSQL) Create(ctx context.Context, tx *gorm.DB, log *models.RecommendationLog) error {
	if err := r.helpers.getDB(tx).WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create recommendation log: %w", err)
	}
	return nil
}
