package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`            // error code, for frontend mapping
	Message string `json:"message"`          // user-facing message
	Detail  string `json:"detail,omitempty"` // internal error, development mode only
}

var developmentMode bool

// SetMode toggles diagnostic detail in error responses. In production the
// response carries only the sanitized message.
func SetMode(environment string) {
	developmentMode = environment != "production"
}

// RespondWithError renders an error response
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// RespondWithDetail renders an error response carrying the internal error
// when running outside production
func RespondWithDetail(c *gin.Context, statusCode int, errorCode string, message string, err error) {
	resp := ErrorResponse{
		Error:   errorCode,
		Message: message,
	}
	if developmentMode && err != nil {
		resp.Detail = err.Error()
	}
	c.JSON(statusCode, resp)
}

// Shortcuts for the common responses

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Please log in to access this resource"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have permission to access this resource"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
