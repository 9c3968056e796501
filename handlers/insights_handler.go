package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/types"
)

type InsightsHandler struct {
	insights InsightsServiceInterface
}

func NewInsightsHandler(insights InsightsServiceInterface) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// HandleInsights returns the current month's spending summary.
// @Summary Monthly spending insights
// @Tags insights
// @Accept json
// @Produce json
// @Param request body types.InsightsRequest true "User"
// @Success 200 {object} types.InsightsSummary
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /v1/insights [post]
func (h *InsightsHandler) HandleInsights(c *gin.Context) {
	var req types.InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", fmt.Sprintf("user_id is required: %v", err)))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		_ = c.Error(errors.ValidationFailed("Invalid request body", "user_id must not be blank"))
		return
	}

	summary, err := h.insights.Generate(c.Request.Context(), req.UserID)
	if err != nil {
		_ = c.Error(errors.Wrap(err, errors.ServerError, "Failed to generate insights"))
		return
	}

	c.JSON(http.StatusOK, summary)
}
