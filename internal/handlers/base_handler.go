package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/services"
	"github.com/learnhub/course-service/internal/utils"
)

// ErrorResponse is the error envelope returned by every handler.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the envelope for operations with no payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// BaseHandler carries the shared handler dependencies.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs with the request-scoped logger so entries carry the
// request id.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// currentIdentity returns the resolved caller, set by the auth middleware.
// Writes a 401 and returns nil when the request is unauthenticated.
func (h *BaseHandler) currentIdentity(c *gin.Context) *services.Identity {
	v, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil
	}

	user, ok := v.(*models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil
	}

	return &services.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}
