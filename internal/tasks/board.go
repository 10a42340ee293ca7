package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/logging"
	"taskdeck/internal/notify"
	"taskdeck/internal/service"
)

// User-facing notification texts.
const (
	MsgFetchFailed   = "Failed to fetch tasks"
	MsgCreated       = "Task created successfully!"
	MsgCreateFailed  = "Failed to create task"
	MsgUpdated       = "Task updated successfully!"
	MsgUpdateFailed  = "Failed to update task"
	MsgDeleted       = "Task deleted successfully!"
	MsgDeleteFailed  = "Failed to delete task"
	MsgTitleRequired = "Task title is required"
)

// ErrTitleRequired is returned when a task would be persisted without a title.
var ErrTitleRequired = errors.New("task title is required")

// Snapshotter persists the result of a successful refresh.
type Snapshotter interface {
	SaveSnapshot(ctx context.Context, tasks []service.Task, stats service.Stats, fetchedAt time.Time) error
}

// Board is the task list store: the cached tasks, the last stats snapshot,
// and the active criteria. The visible subset is recomputed after every
// change to any of them.
//
// Board is safe for concurrent use; the lock is never held across a
// network call.
type Board struct {
	svc   service.Service
	notes notify.Notifier
	snaps Snapshotter
	now   func() time.Time

	mu       sync.Mutex
	tasks    []service.Task
	stats    service.Stats
	criteria Criteria
	visible  []service.Task
	inFlight map[string]service.Status // task ID -> status being sent
}

// Option configures a Board.
type Option func(*Board)

// WithSnapshotter saves every successful refresh through s.
func WithSnapshotter(s Snapshotter) Option {
	return func(b *Board) { b.snaps = s }
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// NewBoard creates an empty board over svc. A nil notifier discards.
func NewBoard(svc service.Service, notes notify.Notifier, opts ...Option) *Board {
	if notes == nil {
		notes = notify.Discard
	}
	b := &Board{
		svc:      svc,
		notes:    notes,
		now:      time.Now,
		inFlight: make(map[string]service.Status),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.recompute()
	return b
}

// Refresh fetches every task and the stats snapshot and replaces the whole
// local cache. A stats failure is logged and keeps the previous snapshot.
func (b *Board) Refresh(ctx context.Context) error {
	logger := logging.From(ctx)

	all, err := b.svc.ListTasks(ctx, service.Query{})
	if err != nil {
		b.notes.Error(MsgFetchFailed)
		return fmt.Errorf("fetch tasks: %w", err)
	}

	stats, statsErr := b.svc.Stats(ctx)
	if statsErr != nil {
		logger.Warn("failed to fetch stats", "err", statsErr)
	}

	b.mu.Lock()
	b.tasks = all
	if statsErr == nil {
		b.stats = stats
	}
	b.recompute()
	snapTasks, snapStats := b.copyTasks(b.tasks), b.stats
	b.mu.Unlock()

	logger.Debug("refreshed", "tasks", len(all))

	if b.snaps != nil {
		if err := b.snaps.SaveSnapshot(ctx, snapTasks, snapStats, b.now()); err != nil {
			logger.Warn("failed to save snapshot", "err", err)
		}
	}
	return nil
}

// Restore seeds the board from a previously saved snapshot without any
// network call.
func (b *Board) Restore(all []service.Task, stats service.Stats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = b.copyTasks(all)
	b.stats = stats
	b.recompute()
}

// Create creates a task, prepends it to the cache and refreshes the stats.
func (b *Board) Create(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return service.Task{}, ErrTitleRequired
	}

	created, err := b.svc.CreateTask(ctx, in)
	if err != nil {
		b.notes.Error(MsgCreateFailed)
		return service.Task{}, fmt.Errorf("create task: %w", err)
	}

	b.mu.Lock()
	b.tasks = append([]service.Task{created}, b.tasks...)
	b.recompute()
	b.mu.Unlock()

	b.refreshStats(ctx)
	b.notes.Success(MsgCreated)
	return created, nil
}

// Update applies p to the task and replaces the cached copy with the
// server's record.
func (b *Board) Update(ctx context.Context, id string, p service.TaskPatch) (service.Task, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return service.Task{}, ErrTitleRequired
	}

	updated, err := b.svc.UpdateTask(ctx, id, p)
	if err != nil {
		b.notes.Error(MsgUpdateFailed)
		return service.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}

	b.mu.Lock()
	b.replace(updated)
	b.recompute()
	b.mu.Unlock()

	b.refreshStats(ctx)
	b.notes.Success(MsgUpdated)
	return updated, nil
}

// Delete deletes the task and drops it from the cache.
func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.svc.DeleteTask(ctx, id); err != nil {
		b.notes.Error(MsgDeleteFailed)
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	b.mu.Lock()
	kept := b.tasks[:0:0]
	for _, t := range b.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	b.tasks = kept
	b.recompute()
	b.mu.Unlock()

	b.refreshStats(ctx)
	b.notes.Success(MsgDeleted)
	return nil
}

// Saver returns the save function for an editor: create when taskID is
// empty, full update otherwise.
func (b *Board) Saver(taskID string) SaveFunc {
	if taskID == "" {
		return func(ctx context.Context, in service.TaskInput) error {
			_, err := b.Create(ctx, in)
			return err
		}
	}
	return func(ctx context.Context, in service.TaskInput) error {
		_, err := b.Update(ctx, taskID, in.Patch())
		return err
	}
}

// SetSearch replaces the free-text search.
func (b *Board) SetSearch(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria.Search = s
	b.recompute()
}

// SetCriteria replaces every criterion, search included.
func (b *Board) SetCriteria(c Criteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = c
	b.recompute()
}

// ClearFilters drops every criterion, restoring the full list.
func (b *Board) ClearFilters() {
	b.SetCriteria(Criteria{})
}

// Criteria returns the active criteria.
func (b *Board) Criteria() Criteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.criteria
}

// Tasks returns a copy of every cached task.
func (b *Board) Tasks() []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyTasks(b.tasks)
}

// Visible returns a copy of the tasks matching the active criteria.
func (b *Board) Visible() []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyTasks(b.visible)
}

// Stats returns the last stats snapshot.
func (b *Board) Stats() service.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Task looks up a cached task by ID.
func (b *Board) Task(id string) (service.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return service.Task{}, false
	}
	return b.tasks[i], true
}

func (b *Board) refreshStats(ctx context.Context) {
	stats, err := b.svc.Stats(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to fetch stats", "err", err)
		return
	}
	b.mu.Lock()
	b.stats = stats
	b.mu.Unlock()
}

// recompute must be called with mu held.
func (b *Board) recompute() {
	b.visible = Visible(b.tasks, b.criteria)
}

// replace must be called with mu held.
func (b *Board) replace(t service.Task) {
	if i := b.index(t.ID); i >= 0 {
		b.tasks[i] = t
	}
}

// index must be called with mu held.
func (b *Board) index(id string) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) copyTasks(in []service.Task) []service.Task {
	out := make([]service.Task, len(in))
	copy(out, in)
	return out
}
