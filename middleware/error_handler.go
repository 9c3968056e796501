package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
)

// ErrorHandler turns the last error attached by a handler into a JSON
// response. Handlers only call c.Error and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		var appError *errors.AppError
		if stderrors.As(err, &appError) {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			response := types.ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    strconv.Itoa(statusCode),
			}
			// Internal details stay in the logs outside debug mode.
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == errors.ValidationError ||
				appError.Type == errors.NotFoundError ||
				appError.Type == errors.UnsupportedMediaType ||
				appError.Type == errors.RateLimitError) {
				response.Details = appError.Detail
			}
			c.JSON(statusCode, response)
			return
		}

		switch last.Type {
		case gin.ErrorTypeBind:
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			response := types.ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: "Failed to bind request",
				Code:    strconv.Itoa(http.StatusBadRequest),
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(http.StatusBadRequest, response)
		case gin.ErrorTypePublic:
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Public error")
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: err.Error(),
				Code:    strconv.Itoa(http.StatusBadRequest),
			})
		default:
			logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
			response := types.ErrorResponse{
				Type:    string(errors.ServerError),
				Message: "Internal Server Error",
				Code:    strconv.Itoa(http.StatusInternalServerError),
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(http.StatusInternalServerError, response)
		}
	}
}
