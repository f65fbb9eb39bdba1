// Package cli provides the interactive NoteHub command-line client.
//
// It wires configuration, local storage, the REST API client, the session
// manager and an interactive REPL that keeps working while the server is
// unreachable. Typical flow: restore the previous session, start the
// background connectivity monitor, and execute user commands.
//
// Key features:
//   - Register / Login / Logout with status-specific error messages
//   - Profile editing (only changed fields are sent)
//   - Offline mode backed by the cached identity, with automatic
//     reconciliation when the server comes back
//   - Optional Prometheus metrics endpoint
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// Single commands go through App.RunCommand. See App and runREPL for details.
package cli
