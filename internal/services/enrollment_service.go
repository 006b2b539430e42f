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

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, req *EnrollRequest, actor *Identity) (*models.Enrollment, error) {
	s.logger.Info("Enrolling user", "user_id", actor.ID, "course_id", req.CourseID)

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if err := validateID(req.CourseID); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Advisory check for a friendly error; the unique index is the real
	// guarantee under concurrent requests.
	if _, err := s.repo.Enrollment().GetByUserAndCourse(ctx, nil, actor.ID, req.CourseID); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	enrollment := &models.Enrollment{
		UserID:   actor.ID,
		CourseID: req.CourseID,
	}

	if err := s.repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	s.publishEvent(ctx, events.TypeEnrollmentCreated, events.EnrollmentEvent{
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
	})

	enrollment.Course = course
	s.logger.Info("User enrolled", "enrollment_id", enrollment.ID)
	return enrollment, nil
}

func (s *enrollmentService) List(ctx context.Context, actor *Identity) (*EnrollmentListResponse, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	if err := s.attachCourses(ctx, enrollments); err != nil {
		return nil, err
	}

	return &EnrollmentListResponse{Enrollments: enrollments, Total: len(enrollments)}, nil
}

// Unenroll is idempotent: removing a non-existent enrollment succeeds.
func (s *enrollmentService) Unenroll(ctx context.Context, courseID string, actor *Identity) error {
	s.logger.Info("Unenrolling user", "user_id", actor.ID, "course_id", courseID)

	if err := validateID(courseID); err != nil {
		return err
	}

	removed, err := s.repo.Enrollment().DeleteByUserAndCourse(ctx, nil, actor.ID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	if removed > 0 {
		s.publishEvent(ctx, events.TypeEnrollmentDeleted, events.EnrollmentEvent{
			UserID:   actor.ID,
			CourseID: courseID,
		})
	}
	return nil
}

func (s *enrollmentService) UpdateProgress(ctx context.Context, courseID string, req *UpdateProgressRequest, actor *Identity) (*models.Enrollment, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if err := validateID(courseID); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment().GetByUserAndCourse(ctx, nil, actor.ID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	enrollment.Progress = req.Progress
	enrollment.Completed = req.Progress == 100

	if err := s.repo.Enrollment().Update(ctx, nil, enrollment); err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}

	s.logger.Info("Progress updated",
		"enrollment_id", enrollment.ID,
		"progress", enrollment.Progress,
		"completed", enrollment.Completed,
	)
	return enrollment, nil
}

// ===== HELPERS =====

// attachCourses joins each enrollment with its decorated course. Courses
// deleted since enrollment leave a nil Course rather than failing the list.
func (s *enrollmentService) attachCourses(ctx context.Context, enrollments []*models.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}

	courseIDs := make([]string, 0, len(enrollments))
	seen := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		if !seen[e.CourseID] {
			seen[e.CourseID] = true
			courseIDs = append(courseIDs, e.CourseID)
		}
	}

	courses, err := s.repo.Course().GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return fmt.Errorf("failed to get courses: %w", err)
	}

	lessonCounts, err := s.repo.Course().LessonCounts(ctx, nil, courseIDs)
	if err != nil {
		return fmt.Errorf("failed to count lessons: %w", err)
	}

	authorIDs := make([]string, 0, len(courses))
	seenAuthors := make(map[string]bool, len(courses))
	for _, c := range courses {
		if !seenAuthors[c.AuthorID] {
			seenAuthors[c.AuthorID] = true
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}
	authors, err := s.repo.User().GetByIDs(ctx, nil, authorIDs)
	if err != nil {
		return fmt.Errorf("failed to get authors: %w", err)
	}
	authorsByID := make(map[string]*models.User, len(authors))
	for _, a := range authors {
		authorsByID[a.ID] = a
	}

	coursesByID := make(map[string]*models.Course, len(courses))
	for _, c := range courses {
		c.Count = &models.CourseCount{Lessons: lessonCounts[c.ID]}
		if author, ok := authorsByID[c.AuthorID]; ok {
			c.Author = &models.AuthorRef{ID: author.ID, Name: author.Name}
		}
		coursesByID[c.ID] = c
	}

	for _, e := range enrollments {
		e.Course = coursesByID[e.CourseID]
	}
	return nil
}

func (s *enrollmentService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
