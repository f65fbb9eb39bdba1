package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Status(ctx context.Context) error
	Retry(ctx context.Context) error
}

// Root prints the banner and runs the REPL on the app's input until the
// user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to NoteHub CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// getStatus renders "(name online)" / "(offline)" for the prompt.
func (a *App) getStatus() string {
	s := a.session.Snapshot()

	var parts []string
	if s.LoggedIn {
		parts = append(parts, s.User.DisplayName())
	}
	switch {
	case s.Loading:
		parts = append(parts, "loading")
	case s.Online:
		parts = append(parts, "online")
	default:
		parts = append(parts, "offline")
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// runREPL starts a simple read–eval–print loop for the NoteHub CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           show available commands
//	  - status         show session details
//	  - register       create an account
//	  - login          authenticate
//	  - retry          re-check the connection
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - help, status, retry, exit | quit
//	  - profile        edit your profile
//	  - logout         log out
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("notehub %s > ", statusFn()))

		line, err := readLine(ctx, reader)
		if err != nil && (err != io.EOF || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: status, profile, retry, logout, exit")
			} else {
				printlnFn("Available commands: status, register, login, retry, exit")
			}

		case "status":
			_ = a.Status(ctx)

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "retry":
			_ = a.Retry(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line from reader, giving up when ctx is done. An
// abandoned read keeps its goroutine until input arrives; the REPL never
// reads from reader again after that.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
