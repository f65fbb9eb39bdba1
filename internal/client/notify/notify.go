// Package notify delivers short user-facing messages (the terminal
// equivalent of toast notifications).
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "ok"
	LevelError   Level = "error"
	LevelWarning Level = "warn"
)

// Sink receives notifications. Implementations must not block for long.
type Sink interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
	Warning(ctx context.Context, msg string)
}

// Writer prints one "[level] message" line per notification.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Success(_ context.Context, msg string) { n.write(LevelSuccess, msg) }
func (n *Writer) Error(_ context.Context, msg string)   { n.write(LevelError, msg) }
func (n *Writer) Warning(_ context.Context, msg string) { n.write(LevelWarning, msg) }

func (n *Writer) write(level Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", level, msg)
}

// Message is a notification kept by Recorder.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(_ context.Context, msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(_ context.Context, msg string)   { r.add(LevelError, msg) }
func (r *Recorder) Warning(_ context.Context, msg string) { r.add(LevelWarning, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.messages = append(r.messages, Message{Level: level, Text: msg})
	r.mu.Unlock()
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
