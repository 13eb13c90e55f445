package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound is returned when a referenced order, purchase order, retailer or
// catalog does not exist.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

// Validation is returned when input fails a business rule. Nothing has been
// written when a Validation error is returned.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// Validationf formats a Validation error.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Conflict is returned when the document changed underneath the caller or the
// requested transition is not allowed from the current status.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

// Forbidden is returned when the caller's identity does not allow the action.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message, nil)
}

// Upstream wraps a data-store or dependency failure. Message is safe to show
// to clients, err is only logged.
func Upstream(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden          = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// As returns err as an *Error. Anything that is not already an *Error becomes
// an internal server error wrapping it.
func As(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return New(http.StatusInternalServerError, ErrInternalServer.Message, err)
}

// Respond writes err as {"error": message} with the error's status code.
func Respond(c *gin.Context, err error) {
	appErr := As(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

// ErrorMiddleware converts errors attached with c.Error into JSON responses.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			appErr := As(c.Errors.Last().Err)
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			c.Abort()
		}
	}
}
