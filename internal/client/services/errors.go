package services

import (
	"errors"

	"github.com/dmitrijs2005/notehub/internal/client/client"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrProfileUpdateFailed  = errors.New("profile update failed")

	// ErrTokenInvalid marks a stored token the server (or its own expiry
	// claim) no longer accepts. It is purged silently.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSuperseded is returned when a newer operation changed the session
	// while this one was in flight; its result was discarded.
	ErrSuperseded = errors.New("operation superseded")

	ErrNotLoggedIn = errors.New("not logged in")
)

// OpError is the failure of a user action. Message is what the user should
// see; errors.Is matches Kind and errors.As reaches the cause (for example a
// *client.Error carrying the HTTP status).
type OpError struct {
	Kind    error
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// errorMessage prefers the server-supplied message of an API error.
func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if apiErr, ok := client.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
