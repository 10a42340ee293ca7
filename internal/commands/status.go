package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/notify"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&StatusCmd{})
	Register(&DoneCmd{})
}

// StatusCmd implements the status command: a status-only update.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Set the status of a task" }
func (c *StatusCmd) Usage() string {
	return "taskdeck status <id> <pending|in-progress|completed>"
}
func (c *StatusCmd) NeedsAuth() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := taskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: status required")
		return exitcode.UserError
	}
	next, err := service.ParseStatus(strings.Join(args[1:], " "))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return changeStatus(ctx, cfg, svc, id, next, out, errOut)
}

// DoneCmd marks a task completed.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskdeck done <id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := taskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return changeStatus(ctx, cfg, svc, id, service.StatusCompleted, out, errOut)
}

// changeStatus is the shared implementation for status and done.
// The board needs the task cached, so the list is fetched first.
func changeStatus(ctx context.Context, cfg *config.Config, svc service.Service, id string, next service.Status, out, errOut io.Writer) int {
	board, closeCache := openBoard(ctx, cfg, svc, notify.NewWriter(out, errOut, cfg.Quiet))
	defer closeCache()
	if err := board.Refresh(ctx); err != nil {
		return fail(errOut, err)
	}

	t, ok := board.Task(id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return exitcode.UserError
	}
	if t.Status == next {
		if !cfg.Quiet {
			fmt.Fprintf(out, "task %s is already %s\n", id, next)
		}
		return exitcode.Success
	}

	if err := board.ChangeStatus(ctx, id, next); err != nil {
		return fail(errOut, err)
	}
	if updated, ok := board.Task(id); ok && !cfg.Quiet {
		output.FormatTask(out, updated, time.Now())
	}
	return exitcode.Success
}
