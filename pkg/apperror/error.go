package apperror

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error represents an application error with an HTTP status and a stable
// machine-readable code, distinct from the domain-level intel.ErrorKind
// taxonomy (which intel.ToAppError bridges at the service boundary).
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// ToEchoError converts the app error into an echo.HTTPError.
func (e *Error) ToEchoError() *echo.HTTPError {
	errBody := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		errBody["details"] = e.Details
	}
	return echo.NewHTTPError(e.HTTPStatus, map[string]any{
		"error": errBody,
	})
}

func (e *Error) WithInternal(err error) *Error {
	return &Error{HTTPStatus: e.HTTPStatus, Code: e.Code, Message: e.Message, Internal: err}
}

func (e *Error) WithMessage(message string) *Error {
	return &Error{HTTPStatus: e.HTTPStatus, Code: e.Code, Message: message, Internal: e.Internal, Details: e.Details}
}

func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{HTTPStatus: e.HTTPStatus, Code: e.Code, Message: e.Message, Internal: e.Internal, Details: details}
}

// New creates a new application error.
func New(status int, code, message string) *Error {
	return &Error{HTTPStatus: status, Code: code, Message: message}
}

var (
	ErrNotFound   = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrInternal   = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
)

// ToHTTPError converts any error into an HTTP status and JSON body.
func ToHTTPError(err error) (int, map[string]any) {
	if appErr, ok := err.(*Error); ok {
		errBody := map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Details) > 0 {
			errBody["details"] = appErr.Details
		}
		return appErr.HTTPStatus, map[string]any{"error": errBody}
	}
	return http.StatusInternalServerError, map[string]any{
		"error": map[string]any{
			"code":    "internal_error",
			"message": "An internal error occurred",
		},
	}
}

// NewBadRequest creates a bad request error with a custom message.
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFound creates a not found error for a resource type and id.
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s '%s' not found", resourceType, id))
}

// NewInternal creates an internal error with a message and optional wrapped cause.
func NewInternal(message string, err error) *Error {
	return &Error{HTTPStatus: http.StatusInternalServerError, Code: "internal_error", Message: message, Internal: err}
}
