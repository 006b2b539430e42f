package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/course-service/internal/services"
	"github.com/learnhub/course-service/internal/utils"
)

type RecommendationHandler struct {
	BaseHandler
	recommendationService services.RecommendationService
}

func NewRecommendationHandler(recommendationService services.RecommendationService, logger utils.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		BaseHandler:           NewBaseHandler(logger),
		recommendationService: recommendationService,
	}
}

// GetRecommendations returns up to five course suggestions for the caller.
// Recommendation failures degrade inside the service; the only errors that
// reach here are infrastructure ones.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	actor := h.currentIdentity(c)
	if actor == nil {
		return
	}

	result, err := h.recommendationService.Recommend(c.Request.Context(), actor)
	if err != nil {
		h.LogRequest(c, "Recommendation failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
