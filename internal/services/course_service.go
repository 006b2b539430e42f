package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/events"
	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
	"github.com/learnhub/course-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, actor *Identity) (*models.Course, error) {
	s.logger.Info("Creating course", "author_id", actor.ID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateCourse(req); len(errs) > 0 {
		return nil, errs
	}

	if !actor.CanAuthor() {
		return nil, NewPermissionError(actor.ID, "", "course", "create", "insufficient role permissions")
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Category:    req.Category,
		Duration:    req.Duration,
		Level:       req.Level,
		AuthorID:    actor.ID,
	}
	if req.ImageURL != "" {
		course.ImageURL = &req.ImageURL
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.publishEvent(ctx, events.TypeCourseCreated, events.CourseEvent{
		CourseID: course.ID,
		AuthorID: course.AuthorID,
		Title:    course.Title,
		Category: course.Category,
	})

	if err := s.decorateCourses(ctx, []*models.Course{course}, true); err != nil {
		return nil, err
	}

	s.logger.Info("Course created", "course_id", course.ID)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByIDWithLessons(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if err := s.decorateCourses(ctx, []*models.Course{course}, true); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	courses, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	if err := s.decorateCourses(ctx, courses, true); err != nil {
		return nil, err
	}

	return &CourseListResponse{Courses: courses, Total: len(courses)}, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *UpdateCourseRequest, actor *Identity) (*models.Course, error) {
	s.logger.Info("Updating course", "course_id", id, "actor_id", actor.ID)

	if err := validateID(id); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateCourse(req); len(errs) > 0 {
		return nil, errs
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "course", "update", "not owner or insufficient permissions")
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Instructor = req.Instructor
	course.Category = req.Category
	course.Duration = req.Duration
	course.Level = req.Level
	if req.ImageURL != "" {
		course.ImageURL = &req.ImageURL
	} else {
		course.ImageURL = nil
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	if err := s.decorateCourses(ctx, []*models.Course{course}, true); err != nil {
		return nil, err
	}
	return course, nil
}

// Delete removes the course together with its lessons and enrollments in a
// single transaction.
func (s *courseService) Delete(ctx context.Context, id string, actor *Identity) error {
	s.logger.Info("Deleting course", "course_id", id, "actor_id", actor.ID)

	if err := validateID(id); err != nil {
		return err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "course", "delete", "not owner or insufficient permissions")
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Lesson().DeleteByCourse(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete lessons: %w", err)
		}
		if err := s.repo.Enrollment().DeleteByCourse(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete enrollments: %w", err)
		}
		if err := s.repo.Course().Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.TypeCourseDeleted, events.CourseEvent{
		CourseID: course.ID,
		AuthorID: course.AuthorID,
		Title:    course.Title,
		Category: course.Category,
	})

	s.logger.Info("Course deleted", "course_id", id)
	return nil
}

func (s *courseService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
