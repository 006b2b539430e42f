package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/course-service/internal/services"
	"github.com/learnhub/course-service/internal/utils"
	"github.com/learnhub/course-service/internal/validator"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	validator         *validator.Validator
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, validator *validator.Validator, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		validator:         validator,
	}
}

// Enroll adds the caller to a course.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req services.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"enrollment": enrollment})
}

// ListEnrollments returns the caller's enrollments with their courses.
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	result, err := h.enrollmentService.List(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Unenroll removes the caller from a course. Succeeds even when there was
// no enrollment to remove.
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	courseID := c.Param("courseId")
	h.LogRequest(c, "Unenrolling from course", "course_id", courseID)

	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	if err := h.enrollmentService.Unenroll(c.Request.Context(), courseID, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Unenrolled"})
}

// UpdateProgress records the caller's progress in a course.
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	courseID := c.Param("courseId")

	var req services.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	enrollment, err := h.enrollmentService.UpdateProgress(c.Request.Context(), courseID, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Already enrolled in this course",
		})
	case errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Course not found",
		})
	case errors.Is(err, services.ErrEnrollmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Enrollment not found",
		})
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid id format",
		})
	default:
		h.LogRequest(c, "Unhandled enrollment error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
