package apperror

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without internal error",
			err:      &Error{HTTPStatus: http.StatusNotFound, Code: "not_found", Message: "Resource not found"},
			expected: "not_found: Resource not found",
		},
		{
			name:     "with internal error",
			err:      &Error{HTTPStatus: http.StatusInternalServerError, Code: "internal_error", Message: "Something went wrong", Internal: errors.New("database connection failed")},
			expected: "internal_error: Something went wrong (database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	withInternal := &Error{HTTPStatus: http.StatusInternalServerError, Code: "internal_error", Message: "x", Internal: errors.New("underlying cause")}
	if withInternal.Unwrap().Error() != "underlying cause" {
		t.Error("Unwrap() did not return the wrapped error")
	}

	withoutInternal := &Error{HTTPStatus: http.StatusNotFound, Code: "not_found", Message: "x"}
	if withoutInternal.Unwrap() != nil {
		t.Error("Unwrap() should be nil when no internal error is set")
	}
}

func TestErrorToEchoError(t *testing.T) {
	err := &Error{HTTPStatus: http.StatusBadRequest, Code: "validation_error", Message: "Validation failed", Details: map[string]any{"field": "email"}}
	got := err.ToEchoError()
	if got.Code != http.StatusBadRequest {
		t.Errorf("ToEchoError().Code = %d, want %d", got.Code, http.StatusBadRequest)
	}
	msg, ok := got.Message.(map[string]any)
	if !ok {
		t.Fatal("ToEchoError().Message is not a map[string]any")
	}
	errBody, ok := msg["error"].(map[string]any)
	if !ok {
		t.Fatal("ToEchoError().Message['error'] is not a map[string]any")
	}
	if errBody["code"] != "validation_error" {
		t.Errorf("error code = %v, want validation_error", errBody["code"])
	}
}

func TestErrorWithInternal(t *testing.T) {
	original := &Error{HTTPStatus: http.StatusNotFound, Code: "not_found", Message: "Resource not found"}
	internalErr := errors.New("database query failed")
	withInternal := original.WithInternal(internalErr)

	if withInternal.Internal != internalErr {
		t.Errorf("WithInternal().Internal = %v, want %v", withInternal.Internal, internalErr)
	}
	if original.Internal != nil {
		t.Error("original error was modified")
	}
}

func TestErrorWithMessage(t *testing.T) {
	original := &Error{HTTPStatus: http.StatusBadRequest, Code: "bad_request", Message: "Original message"}
	withMessage := original.WithMessage("Custom message")
	if withMessage.Message != "Custom message" {
		t.Errorf("WithMessage().Message = %q, want %q", withMessage.Message, "Custom message")
	}
	if original.Message != "Original message" {
		t.Error("original error was modified")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("entity", "abc-123")
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusNotFound)
	}
	if err.Message != "entity 'abc-123' not found" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewInternal(t *testing.T) {
	cause := errors.New("connection timeout")
	err := NewInternal("Database query failed", cause)
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusInternalServerError)
	}
	if err.Internal != cause {
		t.Errorf("Internal = %v, want %v", err.Internal, cause)
	}
}

func TestToHTTPError(t *testing.T) {
	status, body := ToHTTPError(&Error{HTTPStatus: http.StatusNotFound, Code: "not_found", Message: "x"})
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", status, http.StatusNotFound)
	}
	errBody := body["error"].(map[string]any)
	if errBody["code"] != "not_found" {
		t.Errorf("code = %v, want not_found", errBody["code"])
	}

	status, body = ToHTTPError(errors.New("boom"))
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", status, http.StatusInternalServerError)
	}
	errBody = body["error"].(map[string]any)
	if errBody["code"] != "internal_error" {
		t.Errorf("code = %v, want internal_error", errBody["code"])
	}
}
