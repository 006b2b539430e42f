package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RecommendationSource string

const (
	SourceAI       RecommendationSource = "ai"
	SourceFallback RecommendationSource = "fallback"
)

// RecommendationLog records the outcome of every recommendation request so
// silently-degraded responses stay distinguishable after the fact. Detail
// carries the model name, the returned ids and, on fallback, the trigger.
type RecommendationLog struct {
	ID     string               `json:"id" gorm:"primaryKey;size:36"`
	UserID string               `json:"user_id" gorm:"not null;index;size:36"`
	Source RecommendationSource `json:"source" gorm:"not null;size:20;index"`
	Detail datatypes.JSON       `json:"detail"`

	CreatedAt time.Time `json:"created_at"`
}

func (RecommendationLog) TableName() string {
	return "recommendation_logs"
}

func (r *RecommendationLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
