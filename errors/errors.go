package errors

import (
	"fmt"
	"net/http"

	"github.com/raseed-labs/raseed-backend/logger"
)

type ErrorType string

const (
	ValidationError      ErrorType = "VALIDATION_ERROR"
	NotFoundError        ErrorType = "NOT_FOUND"
	DatabaseError        ErrorType = "DATABASE_ERROR"
	ServerError          ErrorType = "SERVER_ERROR"
	ExternalServiceError ErrorType = "EXTERNAL_SERVICE_ERROR"
	RateLimitError       ErrorType = "RATE_LIMIT_EXCEEDED"
	UnsupportedMediaType ErrorType = "UNSUPPORTED_MEDIA_TYPE"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status the error handler responds with.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus == 0 {
		return getHTTPStatus(e.Type)
	}
	return e.HTTPStatus
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewDatabaseError(err error) *AppError {
	// The raw error is logged here; clients only see the sanitized message.
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     err.Error(),
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// ExternalService reports a failure of an upstream dependency such as the
// language model or the wallet signer.
func ExternalService(service string, err error) *AppError {
	appErr := &AppError{
		Type:       ExternalServiceError,
		Message:    fmt.Sprintf("%s request failed", service),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
	if err != nil {
		appErr.Detail = err.Error()
	}
	return appErr
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func UnsupportedMedia(mimeType string) *AppError {
	return &AppError{
		Type:       UnsupportedMediaType,
		Message:    "Unsupported media type",
		Detail:     fmt.Sprintf("MIME type %s is not accepted", mimeType),
		HTTPStatus: http.StatusUnsupportedMediaType,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case ExternalServiceError:
		return http.StatusBadGateway
	case RateLimitError:
		return http.StatusTooManyRequests
	case UnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
