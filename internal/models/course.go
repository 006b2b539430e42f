package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
)

// ValidLevel reports whether l is one of the known course levels.
func ValidLevel(l CourseLevel) bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID          string      `json:"id" gorm:"primaryKey;size:36"`
	Title       string      `json:"title" gorm:"not null;size:200;index"`
	Description string      `json:"description" gorm:"not null;type:text"`
	Instructor  string      `json:"instructor" gorm:"not null;size:100"`
	Category    string      `json:"category" gorm:"not null;size:100;index"`
	Duration    int         `json:"duration" gorm:"not null"` // hours
	Level       CourseLevel `json:"level" gorm:"not null;size:20;index"`
	ImageURL    *string     `json:"imageUrl,omitempty" gorm:"size:500"`

	AuthorID string `json:"authorId" gorm:"not null;index;size:36"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`

	// Computed fields (not stored)
	Author *AuthorRef   `json:"author,omitempty" gorm:"-"`
	Count  *CourseCount `json:"_count,omitempty" gorm:"-"`
}

// CourseCount carries the aggregate counters attached to decorated courses.
type CourseCount struct {
	Lessons     int64 `json:"lessons"`
	Enrollments int64 `json:"enrollments"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
