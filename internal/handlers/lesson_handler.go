package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/course-service/internal/repositories"
	"github.com/learnhub/course-service/internal/services"
	"github.com/learnhub/course-service/internal/utils"
	"github.com/learnhub/course-service/internal/validator"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
	validator     *validator.Validator
}

func NewLessonHandler(lessonService services.LessonService, validator *validator.Validator, logger utils.Logger) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
		validator:     validator,
	}
}

// ListLessons returns lessons, filtered by courseId when given, ordered by
// their position in the course.
func (h *LessonHandler) ListLessons(c *gin.Context) {
	filters := repositories.LessonFilters{
		CourseID: c.Query("courseId"),
	}

	result, err := h.lessonService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLesson returns a single lesson with its parent course reference.
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting lesson", "lesson_id", id)

	lesson, err := h.lessonService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

// CreateLesson adds a lesson to a course owned by the caller.
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req services.CreateLessonRequest
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

	lesson, err := h.lessonService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

// UpdateLesson replaces a lesson's fields.
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating lesson", "lesson_id", id)

	var req services.UpdateLessonRequest
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

	lesson, err := h.lessonService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

// DeleteLesson removes a lesson.
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting lesson", "lesson_id", id)

	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Lesson deleted"})
}

func (h *LessonHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Lesson not found",
		})
	case errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Course not found",
		})
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid id format",
		})
	default:
		h.LogRequest(c, "Unhandled lesson error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
