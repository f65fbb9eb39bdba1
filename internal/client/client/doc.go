// Package client contains the client-side building blocks for NoteHub.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     NoteHub backend: Login/Logout/RegisterUser, CurrentUser, VerifyToken,
//     UpdateUserProfile and Ping.
//  2. A concrete REST implementation (see HTTPClient). Every request passes
//     through a RoundTripper that injects the bearer token held by Headers,
//     a fresh X-Request-ID and the CLI user agent.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses become *Error values carrying the HTTP status and the
// server message. Transport failures and 5xx responses wrap ErrUnavailable;
// 401/403 responses match ErrUnauthorized with errors.Is.
package client
