package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lesson struct {
	ID       string  `json:"id" gorm:"primaryKey;size:36"`
	Title    string  `json:"title" gorm:"not null;size:200"`
	Content  string  `json:"content" gorm:"not null;type:text"`
	Order    int     `json:"order" gorm:"column:\"order\";not null;index"`
	VideoURL *string `json:"videoUrl,omitempty" gorm:"size:500"`
	Duration int     `json:"duration" gorm:"not null"` // minutes

	CourseID string `json:"courseId" gorm:"not null;index;size:36"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed fields (not stored)
	Course *CourseRef `json:"course,omitempty" gorm:"-"`
}

// CourseRef is the parent-course projection attached to lesson responses.
type CourseRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
