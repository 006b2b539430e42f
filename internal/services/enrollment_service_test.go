package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/learnhub/course-service/internal/events"
	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func studentIdentity() *Identity {
	return &Identity{ID: uuid.NewString(), Email: "student@example.com", Name: "Student", Role: models.RoleStudent}
}

func seedCourse(repo *fakeRepository, authorID string) *models.Course {
	course := &models.Course{
		ID:          uuid.NewString(),
		Title:       "Intro to Go",
		Description: "A practical introduction to Go services",
		Instructor:  "Pat Doe",
		Category:    "Programming",
		Duration:    12,
		Level:       models.LevelBeginner,
		AuthorID:    authorID,
	}
	_ = repo.Course().Create(context.Background(), nil, course)
	return course
}

func TestEnrollmentService_Enroll(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("enrolls and publishes event", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(logger)
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), publisher)

		actor := studentIdentity()
		course := seedCourse(repo, uuid.NewString())

		enrollment, err := svc.Enroll(ctx, &EnrollRequest{CourseID: course.ID}, actor)
		if err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
		if enrollment.UserID != actor.ID || enrollment.CourseID != course.ID {
			t.Fatalf("unexpected enrollment %+v", enrollment)
		}
		if enrollment.Course == nil || enrollment.Course.ID != course.ID {
			t.Fatalf("expected course attached to enrollment")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeEnrollmentCreated {
			t.Fatalf("expected one enrollment.created event, got %+v", published)
		}
	})

	t.Run("duplicate enrollment conflicts", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))

		actor := studentIdentity()
		course := seedCourse(repo, uuid.NewString())

		if _, err := svc.Enroll(ctx, &EnrollRequest{CourseID: course.ID}, actor); err != nil {
			t.Fatalf("first enroll failed: %v", err)
		}
		if _, err := svc.Enroll(ctx, &EnrollRequest{CourseID: course.ID}, actor); !errors.Is(err, ErrAlreadyEnrolled) {
			t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))

		_, err := svc.Enroll(ctx, &EnrollRequest{CourseID: uuid.NewString()}, studentIdentity())
		if !errors.Is(err, ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("malformed course id", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))

		_, err := svc.Enroll(ctx, &EnrollRequest{CourseID: "not-a-uuid"}, studentIdentity())
		if !errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestEnrollmentService_Unenroll(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("removes enrollment and publishes event", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(logger)
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), publisher)

		actor := studentIdentity()
		course := seedCourse(repo, uuid.NewString())
		if _, err := svc.Enroll(ctx, &EnrollRequest{CourseID: course.ID}, actor); err != nil {
			t.Fatalf("enroll failed: %v", err)
		}
		publisher.ClearEvents()

		if err := svc.Unenroll(ctx, course.ID, actor); err != nil {
			t.Fatalf("Unenroll failed: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeEnrollmentDeleted {
			t.Fatalf("expected one enrollment.deleted event, got %+v", published)
		}
	})

	t.Run("idempotent when not enrolled", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(logger)
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), publisher)

		if err := svc.Unenroll(ctx, uuid.NewString(), studentIdentity()); err != nil {
			t.Fatalf("expected idempotent unenroll, got %v", err)
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Fatalf("no event expected when nothing was removed")
		}
	})
}

func TestEnrollmentService_UpdateProgress(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("sets completed at 100", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))

		actor := studentIdentity()
		course := seedCourse(repo, uuid.NewString())
		if _, err := svc.Enroll(ctx, &EnrollRequest{CourseID: course.ID}, actor); err != nil {
			t.Fatalf("enroll failed: %v", err)
		}

		enrollment, err := svc.UpdateProgress(ctx, course.ID, &UpdateProgressRequest{Progress: 100}, actor)
		if err != nil {
			t.Fatalf("UpdateProgress failed: %v", err)
		}
		if !enrollment.Completed || enrollment.Progress != 100 {
			t.Fatalf("expected completed enrollment, got %+v", enrollment)
		}

		enrollment, err = svc.UpdateProgress(ctx, course.ID, &UpdateProgressRequest{Progress: 40}, actor)
		if err != nil {
			t.Fatalf("UpdateProgress failed: %v", err)
		}
		if enrollment.Completed {
			t.Fatalf("progress below 100 must clear completed")
		}
	})

	t.Run("missing enrollment", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))

		_, err := svc.UpdateProgress(ctx, uuid.NewString(), &UpdateProgressRequest{Progress: 10}, studentIdentity())
		if !errors.Is(err, ErrEnrollmentNotFound) {
			t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
		}
	})

	t.Run("rejects out-of-range progress", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewEnrollmentService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))

		actor := studentIdentity()
		course := seedCourse(repo, uuid.NewString())
		if _, err := svc.Enroll(ctx, &EnrollRequest{CourseID: course.ID}, actor); err != nil {
			t.Fatalf("enroll failed: %v", err)
		}

		var validationErrors ValidationErrors
		_, err := svc.UpdateProgress(ctx, course.ID, &UpdateProgressRequest{Progress: 120}, actor)
		if !errors.As(err, &validationErrors) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})
}
