package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
)

type QueryHandler struct {
	queryService QueryServiceInterface
}

func NewQueryHandler(queryService QueryServiceInterface) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// HandleQuery answers a question about the user's receipts and returns the
// wallet pass built from the answer.
// @Summary Ask the receipt assistant
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body types.QueryRequest true "Question and user"
// @Success 200 {object} types.QueryResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 429 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /v1/query [post]
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warnw("HandleQuery: failed to bind request", "error", err)
		_ = c.Error(errors.ValidationFailed("Invalid request body", fmt.Sprintf("query and user_id are required: %v", err)))
		return
	}

	resp, err := h.queryService.Answer(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
