// Package notify surfaces transient, user-facing notifications.
//
// Notifications are not log lines: they are the messages a user sees after an
// action succeeds or fails ("Task created successfully!", "Failed to delete
// task").
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Lifetime is how long a dashboard notification stays visible.
const Lifetime = 4 * time.Second

// Kind distinguishes success from error notifications.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

// Notifier receives user-facing notifications.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}

// Writer prints notifications for the one-shot CLI.
// Successes go to out unless quiet; errors always go to errOut.
type Writer struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// NewWriter creates a Writer.
func NewWriter(out, errOut io.Writer, quiet bool) *Writer {
	return &Writer{out: out, errOut: errOut, quiet: quiet}
}

// Success implements Notifier.
func (w *Writer) Success(msg string) {
	if w.quiet {
		return
	}
	fmt.Fprintln(w.out, msg)
}

// Error implements Notifier.
func (w *Writer) Error(msg string) {
	fmt.Fprintf(w.errOut, "error: %s\n", msg)
}

// Note is a single queued notification.
type Note struct {
	Kind    Kind
	Text    string
	Expires time.Time
}

// Queue collects notifications for the dashboard and expires them after
// Lifetime. It is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	notes []Note
	now   func() time.Time
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

// Success implements Notifier.
func (q *Queue) Success(msg string) { q.push(KindSuccess, msg) }

// Error implements Notifier.
func (q *Queue) Error(msg string) { q.push(KindError, msg) }

func (q *Queue) push(k Kind, msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notes = append(q.notes, Note{Kind: k, Text: msg, Expires: q.now().Add(Lifetime)})
}

// Active returns the notifications that have not expired, oldest first,
// dropping the expired ones.
func (q *Queue) Active() []Note {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	kept := q.notes[:0]
	for _, n := range q.notes {
		if n.Expires.After(now) {
			kept = append(kept, n)
		}
	}
	q.notes = kept
	out := make([]Note, len(kept))
	copy(out, kept)
	return out
}
