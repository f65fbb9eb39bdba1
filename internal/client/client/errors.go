package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	// Fields holds per-field validation messages, if the server sent any.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match 401/403 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && (e.IsUnauthorized() || e.IsForbidden())
}

func (e *Error) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

func (e *Error) IsForbidden() bool { return e.StatusCode == http.StatusForbidden }

func (e *Error) IsValidation() bool { return e.StatusCode == http.StatusUnprocessableEntity }

func (e *Error) IsBadRequest() bool { return e.StatusCode == http.StatusBadRequest }

// AsError returns the *Error inside err, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}

// parseError builds an *Error from a failed response body. It understands
// {"error":{"code","message"}}, {"message","errors"} and plain text bodies.
func parseError(statusCode int, body []byte) error {
	var nested struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return &Error{StatusCode: statusCode, Code: nested.Error.Code, Message: nested.Error.Message}
	}

	var flat struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && (flat.Message != "" || len(flat.Errors) > 0) {
		return &Error{StatusCode: statusCode, Code: flat.Code, Message: flat.Message, Fields: flat.Errors}
	}

	msg := strings.TrimSpace(string(body))
	if strings.HasPrefix(msg, "{") || strings.HasPrefix(msg, "<") {
		msg = ""
	}
	return &Error{StatusCode: statusCode, Message: msg}
}
