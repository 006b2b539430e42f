package services

import (
	"context"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
	"github.com/learnhub/course-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateLessonRequest = validator.LessonCreateRequest
type UpdateLessonRequest = validator.LessonUpdateRequest
type EnrollRequest = validator.EnrollRequest
type UpdateProgressRequest = validator.ProgressUpdateRequest

// Identity is the resolved caller, extracted from the session token by the
// auth middleware.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  models.UserRole
}

func (i *Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

func (i *Identity) CanAuthor() bool {
	return i.Role == models.RoleInstructor || i.Role == models.RoleAdmin
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int              `json:"total"`
}

type LessonListResponse struct {
	Lessons []*models.Lesson `json:"lessons"`
	Total   int              `json:"total"`
}

type EnrollmentListResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
	Total       int                  `json:"total"`
}

type RecommendationResponse struct {
	Recommendations []*models.Course            `json:"recommendations"`
	Source          models.RecommendationSource `json:"source"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, actor *Identity) (*models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	Update(ctx context.Context, id string, req *UpdateCourseRequest, actor *Identity) (*models.Course, error)
	Delete(ctx context.Context, id string, actor *Identity) error
}

type LessonService interface {
	Create(ctx context.Context, req *CreateLessonRequest, actor *Identity) (*models.Lesson, error)
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
	List(ctx context.Context, filters repositories.LessonFilters) (*LessonListResponse, error)
	Update(ctx context.Context, id string, req *UpdateLessonRequest, actor *Identity) (*models.Lesson, error)
	Delete(ctx context.Context, id string, actor *Identity) error
}

type EnrollmentService interface {
	Enroll(ctx context.Context, req *EnrollRequest, actor *Identity) (*models.Enrollment, error)
	List(ctx context.Context, actor *Identity) (*EnrollmentListResponse, error)
	Unenroll(ctx context.Context, courseID string, actor *Identity) error
	UpdateProgress(ctx context.Context, courseID string, req *UpdateProgressRequest, actor *Identity) (*models.Enrollment, error)
}

type RecommendationService interface {
	Recommend(ctx context.Context, actor *Identity) (*RecommendationResponse, error)
}

type ReportService interface {
	// ExportCourseEnrollments renders the course roster as an xlsx workbook
	// and returns the file bytes with a suggested filename.
	ExportCourseEnrollments(ctx context.Context, courseID string, actor *Identity) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Course() CourseService
	Lesson() LessonService
	Enrollment() EnrollmentService
	Recommendation() RecommendationService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
