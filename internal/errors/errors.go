package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/logger"
)

// CinelogError represents a structured error with HTTP context
type CinelogError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *CinelogError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CinelogError) Unwrap() error {
	return e.Cause
}

// ToGinResponse sends the error as a standardized JSON response
func (e *CinelogError) ToGinResponse(c *gin.Context) {
	statusCode := e.HTTPStatus
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	response := gin.H{
		"error": e.Message,
		"code":  e.Code,
	}

	if len(e.Context) > 0 {
		response["details"] = e.Context
	}

	logger.Error("HTTP error response", []logger.Field{
		logger.Int("status", statusCode),
		logger.String("code", e.Code),
		logger.String("message", e.Message),
		logger.String("path", c.Request.URL.Path),
		logger.String("method", c.Request.Method),
	})

	c.JSON(statusCode, response)
}

// Common error constructors

func NewValidationError(message string, field string) *CinelogError {
	return &CinelogError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"field": field},
	}
}

// NewFieldValidationError carries one message per offending field
func NewFieldValidationError(message string, fields map[string]string) *CinelogError {
	ctx := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		ctx[field] = msg
	}
	return &CinelogError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Context:    ctx,
	}
}

func NewNotFoundError(resource string, id string) *CinelogError {
	return &CinelogError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
		Context:    map[string]interface{}{"resource": resource, "id": id},
	}
}

// NewUnauthorizedError is the denial for unauthenticated callers
func NewUnauthorizedError(message string) *CinelogError {
	if message == "" {
		message = "Authentication required"
	}
	return &CinelogError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbiddenError is the denial for callers lacking a capability
func NewForbiddenError(message string) *CinelogError {
	if message == "" {
		message = "Insufficient permissions"
	}
	return &CinelogError{
		Code:       "FORBIDDEN",
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *CinelogError {
	return &CinelogError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewDatabaseError(operation string, cause error) *CinelogError {
	return &CinelogError{
		Code:       "DATABASE_ERROR",
		Message:    "Database operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Context:    map[string]interface{}{"operation": operation},
		Cause:      cause,
	}
}

// HTTP helpers to eliminate duplicate error handling

func HandleValidationError(c *gin.Context, message string, field string) {
	NewValidationError(message, field).ToGinResponse(c)
}

func HandleFieldValidationError(c *gin.Context, message string, fields map[string]string) {
	NewFieldValidationError(message, fields).ToGinResponse(c)
}

func HandleNotFound(c *gin.Context, resource string, id string) {
	NewNotFoundError(resource, id).ToGinResponse(c)
}

func HandleUnauthorized(c *gin.Context, message string) {
	NewUnauthorizedError(message).ToGinResponse(c)
}

func HandleForbidden(c *gin.Context, message string) {
	NewForbiddenError(message).ToGinResponse(c)
}

func HandleInternalError(c *gin.Context, message string, err error) {
	NewInternalError(message, err).ToGinResponse(c)
}

func HandleDatabaseError(c *gin.Context, operation string, err error) {
	NewDatabaseError(operation, err).ToGinResponse(c)
}
