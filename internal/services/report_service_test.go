package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/learnhub/course-service/internal/models"
)

func TestReportService_ExportCourseEnrollments(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("owner exports roster", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewReportService(repo, nil, logger)

		owner := instructorIdentity()
		course := seedCourse(repo, owner.ID)

		student := &models.User{ID: uuid.NewString(), Name: "Sam Lee", Email: "sam@example.com", PasswordHash: "x", Role: models.RoleStudent}
		_ = repo.User().Create(ctx, nil, student)
		_ = repo.Enrollment().Create(ctx, nil, &models.Enrollment{UserID: student.ID, CourseID: course.ID, Progress: 60})

		data, filename, err := svc.ExportCourseEnrollments(ctx, course.ID, owner)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.HasSuffix(filename, ".xlsx") {
			t.Fatalf("unexpected filename %q", filename)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("export is not a readable workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows("Enrollments")
		if err != nil {
			t.Fatalf("failed to read sheet: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected header plus one row, got %d rows", len(rows))
		}
		if rows[1][0] != "Sam Lee" || rows[1][1] != "sam@example.com" {
			t.Fatalf("unexpected roster row %v", rows[1])
		}
	})

	t.Run("non-owner denied", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewReportService(repo, nil, logger)

		course := seedCourse(repo, uuid.NewString())

		var permissionError *PermissionError
		_, _, err := svc.ExportCourseEnrollments(ctx, course.ID, instructorIdentity())
		if !errors.As(err, &permissionError) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewReportService(repo, nil, logger)

		_, _, err := svc.ExportCourseEnrollments(ctx, uuid.NewString(), instructorIdentity())
		if !errors.Is(err, ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound, got %v", err)
		}
	})
}
