package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment records a user's membership in a course. The composite unique
// index is the backstop for the one-enrollment-per-course invariant; the
// service-level existence check is advisory only.
type Enrollment struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	UserID   string `json:"userId" gorm:"not null;size:36;uniqueIndex:idx_enrollments_user_course"`
	CourseID string `json:"courseId" gorm:"not null;size:36;uniqueIndex:idx_enrollments_user_course;index"`

	Progress   int       `json:"progress" gorm:"not null;default:0"`
	Completed  bool      `json:"completed" gorm:"not null;default:false"`
	EnrolledAt time.Time `json:"enrolledAt" gorm:"not null;autoCreateTime;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed fields (not stored)
	Course *Course `json:"course,omitempty" gorm:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
