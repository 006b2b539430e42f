package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
	"github.com/learnhub/course-service/internal/services"
	"github.com/learnhub/course-service/internal/utils"
	"github.com/learnhub/course-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	reportService services.ReportService
	validator     *validator.Validator
}

func NewCourseHandler(
	courseService services.CourseService,
	reportService services.ReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		reportService: reportService,
		validator:     validator,
	}
}

// ListCourses returns the catalog, optionally filtered by category, level
// and a free-text search.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := repositories.CourseFilters{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if levelParam := c.Query("level"); levelParam != "" {
		level := models.CourseLevel(levelParam)
		if !models.ValidLevel(level) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid course level",
				Details: fmt.Sprintf("unknown level %q", levelParam),
			})
			return
		}
		filters.Level = &level
	}

	result, err := h.courseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCourse returns a single course with its lessons.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting course", "course_id", id)

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// CreateCourse creates a new course owned by the caller.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
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

	course, err := h.courseService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse replaces a course's fields.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating course", "course_id", id)

	var req services.UpdateCourseRequest
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

	course, err := h.courseService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// DeleteCourse removes a course with its lessons and enrollments.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting course", "course_id", id)

	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}

// ExportEnrollments streams the course roster as an xlsx download.
func (h *CourseHandler) ExportEnrollments(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Exporting course enrollments", "course_id", id)

	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	data, filename, err := h.reportService.ExportCourseEnrollments(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *CourseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Course not found",
		})
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid id format",
		})
	default:
		h.LogRequest(c, "Unhandled course error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
