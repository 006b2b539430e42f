package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

const enrollmentSheet = "Enrollments"

// ExportCourseEnrollments builds an xlsx roster of everyone enrolled in the
// course. Restricted to the course author and admins.
func (s *reportService) ExportCourseEnrollments(ctx context.Context, courseID string, actor *Identity) ([]byte, string, error) {
	s.logger.Info("Exporting enrollments", "course_id", courseID, "actor_id", actor.ID)

	if err := validateID(courseID); err != nil {
		return nil, "", err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrCourseNotFound
		}
		return nil, "", fmt.Errorf("failed to get course: %w", err)
	}

	if course.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, "", NewPermissionError(actor.ID, courseID, "course", "export_enrollments", "not owner or insufficient permissions")
	}

	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list enrollments: %w", err)
	}

	userIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		userIDs = append(userIDs, e.UserID)
	}
	users, err := s.repo.User().GetByIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get enrolled users: %w", err)
	}
	usersByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), enrollmentSheet)

	headers := []string{"Name", "Email", "Enrolled At", "Progress (%)", "Completed"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(enrollmentSheet, cell, h); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, e := range enrollments {
		name, email := "(deleted user)", ""
		if u, ok := usersByID[e.UserID]; ok {
			name, email = u.Name, u.Email
		}

		values := []interface{}{
			name,
			email,
			e.EnrolledAt.Format(time.RFC3339),
			e.Progress,
			e.Completed,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(enrollmentSheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("enrollments-%s-%s.xlsx", course.ID, time.Now().Format("2006-01-02"))
	s.logger.Info("Enrollment export ready", "course_id", courseID, "rows", len(enrollments))
	return buf.Bytes(), filename, nil
}
