package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
	"github.com/learnhub/course-service/internal/validator"
)

type lessonService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLessonService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) LessonService {
	return &lessonService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *lessonService) Create(ctx context.Context, req *CreateLessonRequest, actor *Identity) (*models.Lesson, error) {
	s.logger.Info("Creating lesson", "course_id", req.CourseID, "actor_id", actor.ID)

	if errs := s.validator.GetBusinessValidator().ValidateLesson(req); len(errs) > 0 {
		return nil, errs
	}

	course, err := s.parentCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, course.ID, "lesson", "create", "not course owner or insufficient permissions")
	}

	lesson := &models.Lesson{
		Title:    req.Title,
		Content:  req.Content,
		Order:    req.Order,
		Duration: req.Duration,
		CourseID: req.CourseID,
	}
	if req.VideoURL != "" {
		lesson.VideoURL = &req.VideoURL
	}

	if err := s.repo.Lesson().Create(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	lesson.Course = &models.CourseRef{ID: course.ID, Title: course.Title}
	s.logger.Info("Lesson created", "lesson_id", lesson.ID)
	return lesson, nil
}

func (s *lessonService) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	if err := s.attachCourseRef(ctx, []*models.Lesson{lesson}); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *lessonService) List(ctx context.Context, filters repositories.LessonFilters) (*LessonListResponse, error) {
	if filters.CourseID != "" {
		if err := validateID(filters.CourseID); err != nil {
			return nil, err
		}
	}

	lessons, err := s.repo.Lesson().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	if err := s.attachCourseRef(ctx, lessons); err != nil {
		return nil, err
	}

	return &LessonListResponse{Lessons: lessons, Total: len(lessons)}, nil
}

func (s *lessonService) Update(ctx context.Context, id string, req *UpdateLessonRequest, actor *Identity) (*models.Lesson, error) {
	s.logger.Info("Updating lesson", "lesson_id", id, "actor_id", actor.ID)

	if err := validateID(id); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateLesson(req); len(errs) > 0 {
		return nil, errs
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	course, err := s.parentCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "lesson", "update", "not course owner or insufficient permissions")
	}

	// Lessons stay within their course; the courseId in the payload cannot
	// move them.
	lesson.Title = req.Title
	lesson.Content = req.Content
	lesson.Order = req.Order
	lesson.Duration = req.Duration
	if req.VideoURL != "" {
		lesson.VideoURL = &req.VideoURL
	} else {
		lesson.VideoURL = nil
	}

	if err := s.repo.Lesson().Update(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}

	lesson.Course = &models.CourseRef{ID: course.ID, Title: course.Title}
	return lesson, nil
}

func (s *lessonService) Delete(ctx context.Context, id string, actor *Identity) error {
	s.logger.Info("Deleting lesson", "lesson_id", id, "actor_id", actor.ID)

	if err := validateID(id); err != nil {
		return err
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to get lesson: %w", err)
	}

	course, err := s.parentCourse(ctx, lesson.CourseID)
	if err != nil {
		return err
	}

	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "lesson", "delete", "not course owner or insufficient permissions")
	}

	if err := s.repo.Lesson().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	s.logger.Info("Lesson deleted", "lesson_id", id)
	return nil
}

// ===== HELPERS =====

// parentCourse loads the course a lesson belongs to. Lesson permissions are
// always derived from the parent course's ownership.
func (s *lessonService) parentCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if err := validateID(courseID); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *lessonService) attachCourseRef(ctx context.Context, lessons []*models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}

	courseIDs := make([]string, 0, len(lessons))
	seen := make(map[string]bool, len(lessons))
	for _, l := range lessons {
		if !seen[l.CourseID] {
			seen[l.CourseID] = true
			courseIDs = append(courseIDs, l.CourseID)
		}
	}

	courses, err := s.repo.Course().GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return fmt.Errorf("failed to get courses: %w", err)
	}
	refsByID := make(map[string]*models.CourseRef, len(courses))
	for _, c := range courses {
		refsByID[c.ID] = &models.CourseRef{ID: c.ID, Title: c.Title}
	}

	for _, l := range lessons {
		l.Course = refsByID[l.CourseID]
	}
	return nil
}
