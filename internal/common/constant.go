// Package common contains constants shared by the NoteHub client layers.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName carries a per-request id for server-side log correlation.
	RequestIDHeaderName = "X-Request-ID"

	// UserAgent identifies the CLI to the API.
	UserAgent = "notehub-cli/1.0"
)
