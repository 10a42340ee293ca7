package tasks

import (
	"context"
	"errors"
	"fmt"

	"taskdeck/internal/service"
)

// ErrUpdateInFlight is returned when a task's status is changed while a
// previous change for the same task has not completed.
var ErrUpdateInFlight = errors.New("status update already in progress")

// ChangeStatus sends an update that sets only the task's status.
//
// While the call is in flight the task's control is busy and shows the new
// value; a second change for the same task is rejected without a network
// call. On failure the displayed status reverts to the cached one and an
// error notification is raised. The cache only changes on server
// confirmation.
func (b *Board) ChangeStatus(ctx context.Context, id string, next service.Status) error {
	if !next.Valid() {
		return fmt.Errorf("invalid status: %s", next)
	}

	b.mu.Lock()
	i := b.index(id)
	if i < 0 {
		b.mu.Unlock()
		return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	if _, busy := b.inFlight[id]; busy {
		b.mu.Unlock()
		return ErrUpdateInFlight
	}
	if b.tasks[i].Status == next {
		b.mu.Unlock()
		return nil
	}
	b.inFlight[id] = next
	b.mu.Unlock()

	updated, err := b.svc.UpdateTask(ctx, id, service.TaskPatch{Status: &next})

	b.mu.Lock()
	delete(b.inFlight, id)
	if err == nil {
		b.replace(updated)
		b.recompute()
	}
	b.mu.Unlock()

	if err != nil {
		b.notes.Error(MsgUpdateFailed)
		return fmt.Errorf("update status of task %s: %w", id, err)
	}

	b.refreshStats(ctx)
	b.notes.Success(MsgUpdated)
	return nil
}

// DisplayedStatus returns the status the task's control shows: the value
// being sent while an update is in flight, the cached status otherwise.
func (b *Board) DisplayedStatus(id string) service.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, busy := b.inFlight[id]; busy {
		return s
	}
	if i := b.index(id); i >= 0 {
		return b.tasks[i].Status
	}
	return ""
}

// StatusBusy reports whether a status update for the task is in flight.
func (b *Board) StatusBusy(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, busy := b.inFlight[id]
	return busy
}
