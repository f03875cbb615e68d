package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo carries a parsed error code and user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts store and infrastructure errors into a sanitized
// code/message pair. Sensitive internals stay out of the message; the raw
// error is only surfaced through the development-mode detail field.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// Unique constraint violation (postgres 23505, sqlite "UNIQUE constraint failed")
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		if strings.Contains(errStr, "email") {
			return ErrorInfo{
				Code:    AuthEmailAlreadyExists,
				Message: "This email is already registered",
			}
		}
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A record with these values already exists",
		}
	}

	// Not null constraint violation
	if strings.Contains(errStr, "null value") || strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// Connectivity failures against the store or external services
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "A backing service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again later",
	}
}

// ParseAndRespond parses an error and renders it, keeping the raw error
// available for development-mode detail
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	if statusCode == http.StatusInternalServerError {
		switch info.Code {
		case ResourceNotFound:
			statusCode = http.StatusNotFound
		case AuthEmailAlreadyExists, ResourceAlreadyExists:
			statusCode = http.StatusConflict
		}
	}
	RespondWithDetail(c, statusCode, info.Code, info.Message, err)
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "product") {
		return "Product not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}
	return "The requested resource was not found"
}
