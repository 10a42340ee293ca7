package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/service"
)

// State is the editor's lifecycle state.
type State int

const (
	// StateNew is an untouched form for a task that does not exist yet.
	StateNew State = iota
	// StateEditing is a form with user input or fields copied from a task.
	StateEditing
	// StateSubmitting is a form whose save call is in flight.
	StateSubmitting
	// StateClosed is a form that was saved successfully.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrSubmitting is returned when Submit is called while a save is in flight.
	ErrSubmitting = errors.New("save already in progress")

	// ErrEditorClosed is returned when Submit is called after a successful save.
	ErrEditorClosed = errors.New("editor is closed")
)

// SaveFunc persists the editor's payload; the caller decides between create
// and update.
type SaveFunc func(ctx context.Context, in service.TaskInput) error

// Form holds a task's editable fields as entered.
// DueDate is a YYYY-MM-DD string; empty means no due date.
type Form struct {
	Title       string
	Description string
	DueDate     string
	Priority    service.Priority
	Status      service.Status
	Category    service.Category
	Tags        []string
}

// Editor is the create/update form for a single task.
type Editor struct {
	mu     sync.Mutex
	state  State
	taskID string
	form   Form
	err    error
}

// NewEditor opens a form. With a nil task it starts empty with default
// metadata; otherwise it starts Editing with the task's fields.
func NewEditor(t *service.Task) *Editor {
	e := &Editor{
		form: Form{
			Priority: service.PriorityMedium,
			Status:   service.StatusPending,
			Category: service.CategoryGeneral,
		},
	}
	if t == nil {
		return e
	}

	e.state = StateEditing
	e.taskID = t.ID
	e.form.Title = t.Title
	e.form.Description = t.Description
	if t.DueDate != nil {
		e.form.DueDate = t.DueDate.Format(service.DateLayout)
	}
	if t.Priority != "" {
		e.form.Priority = t.Priority
	}
	if t.Status != "" {
		e.form.Status = t.Status
	}
	if t.Category != "" {
		e.form.Category = t.Category
	}
	e.form.Tags = append([]string{}, t.Tags...)
	return e
}

// State returns the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// TaskID returns the edited task's ID, or "" for a new task.
func (e *Editor) TaskID() string {
	return e.taskID
}

// IsNew reports whether the editor creates a task.
func (e *Editor) IsNew() bool {
	return e.taskID == ""
}

// Form returns a copy of the current field values.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.form
	f.Tags = append([]string{}, e.form.Tags...)
	return f
}

// Err returns the error of the last failed submit, if any.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// SetTitle sets the title.
func (e *Editor) SetTitle(s string) { e.edit(func(f *Form) { f.Title = s }) }

// SetDescription sets the description.
func (e *Editor) SetDescription(s string) { e.edit(func(f *Form) { f.Description = s }) }

// SetDueDate sets the due date as YYYY-MM-DD, or "" for none.
func (e *Editor) SetDueDate(s string) { e.edit(func(f *Form) { f.DueDate = s }) }

// SetPriority sets the priority.
func (e *Editor) SetPriority(p service.Priority) { e.edit(func(f *Form) { f.Priority = p }) }

// SetStatus sets the status.
func (e *Editor) SetStatus(s service.Status) { e.edit(func(f *Form) { f.Status = s }) }

// SetCategory sets the category.
func (e *Editor) SetCategory(c service.Category) { e.edit(func(f *Form) { f.Category = c }) }

// AddTag appends the trimmed tag. Blank tags and exact duplicates are
// ignored; it reports whether the list changed.
func (e *Editor) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	added := false
	e.edit(func(f *Form) {
		for _, existing := range f.Tags {
			if existing == tag {
				return
			}
		}
		f.Tags = append(f.Tags, tag)
		added = true
	})
	return added
}

// RemoveTag removes the tag that matches exactly; it reports whether the
// list changed.
func (e *Editor) RemoveTag(tag string) bool {
	removed := false
	e.edit(func(f *Form) {
		kept := f.Tags[:0:0]
		for _, existing := range f.Tags {
			if existing == tag {
				removed = true
				continue
			}
			kept = append(kept, existing)
		}
		f.Tags = kept
	})
	return removed
}

// edit applies fn unless the form is submitting or closed.
func (e *Editor) edit(fn func(*Form)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting || e.state == StateClosed {
		return
	}
	fn(&e.form)
	e.state = StateEditing
}

// Input validates the form and returns the payload to dispatch. An empty
// due date becomes nil.
func (e *Editor) Input() (service.TaskInput, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.input()
}

func (e *Editor) input() (service.TaskInput, error) {
	f := e.form
	if strings.TrimSpace(f.Title) == "" {
		return service.TaskInput{}, ErrTitleRequired
	}
	if !f.Priority.Valid() {
		return service.TaskInput{}, fmt.Errorf("invalid priority: %s", f.Priority)
	}
	if !f.Status.Valid() {
		return service.TaskInput{}, fmt.Errorf("invalid status: %s", f.Status)
	}
	if !f.Category.Valid() {
		return service.TaskInput{}, fmt.Errorf("invalid category: %s", f.Category)
	}

	in := service.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Status:      f.Status,
		Category:    f.Category,
		Tags:        append([]string{}, f.Tags...),
	}
	if due := strings.TrimSpace(f.DueDate); due != "" {
		d, err := time.Parse(service.DateLayout, due)
		if err != nil {
			return service.TaskInput{}, fmt.Errorf("invalid due date: %s", due)
		}
		in.DueDate = &d
	}
	return in, nil
}

// Submit validates the form and calls save. A validation failure never
// reaches save and leaves the form editing. On success the editor closes; on
// failure it stays editing with the error kept. Nothing is retried.
func (e *Editor) Submit(ctx context.Context, save SaveFunc) error {
	e.mu.Lock()
	switch e.state {
	case StateSubmitting:
		e.mu.Unlock()
		return ErrSubmitting
	case StateClosed:
		e.mu.Unlock()
		return ErrEditorClosed
	}
	in, err := e.input()
	if err != nil {
		e.state = StateEditing
		e.err = err
		e.mu.Unlock()
		return err
	}
	e.state = StateSubmitting
	e.err = nil
	e.mu.Unlock()

	err = save(ctx, in)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateEditing
		e.err = err
		return err
	}
	e.state = StateClosed
	return nil
}

// Message returns the user-facing text for a submit error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTitleRequired):
		return MsgTitleRequired
	default:
		return err.Error()
	}
}
