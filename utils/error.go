package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes shared by the matching, ledger and lifecycle services.
const (
	CodeNotFound           = "not_found"
	CodeStoreUnavailable   = "store_unavailable"
	CodeValidation         = "validation_error"
	CodeInvalidTransition  = "invalid_transition"
	CodeNotificationFailed = "notification_failed"
	CodeForbidden          = "forbidden"
)

// AppError is a typed failure surfaced by the core services.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewNotFoundError(format string, args ...interface{}) error {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...interface{}) error {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewTransitionError(format string, args ...interface{}) error {
	return &AppError{Code: CodeInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NewStoreUnavailableError(err error, format string, args ...interface{}) error {
	return &AppError{Code: CodeStoreUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewNotificationError(err error, format string, args ...interface{}) error {
	return &AppError{Code: CodeNotificationFailed, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewForbiddenError(format string, args ...interface{}) error {
	return &AppError{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the AppError code carried by err, or "" if none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool { return ErrorCode(err) == CodeNotFound }

// IsStoreUnavailable reports whether err carries CodeStoreUnavailable.
func IsStoreUnavailable(err error) bool { return ErrorCode(err) == CodeStoreUnavailable }

// IsValidation reports whether err carries CodeValidation.
func IsValidation(err error) bool { return ErrorCode(err) == CodeValidation }

// StatusFor maps an error to the HTTP status a handler should answer with.
func StatusFor(err error) int {
	switch ErrorCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case CodeNotificationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// RespondError writes err with the status and code derived from it. Store
// failures are not echoed to the client.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	code := ErrorCode(err)

	var appErr *AppError
	message := "Internal Server Error"
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		GetLogger().Error(message, zap.String("code", code), zap.Error(err))
		c.JSON(status, ErrorResponse{Message: message, Code: code})
		return
	}
	GetLogger().Warn(message, zap.String("code", code))
	c.JSON(status, ErrorResponse{Message: message, Code: code})
}
