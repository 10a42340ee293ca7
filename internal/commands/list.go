package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/notify"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskdeck` (no args) and `taskdeck list [filters]`.
type ListCmd struct {
	filters filterFlags
	cached  bool
	long    bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskdeck list [--status s] [--category c] [--priority p] [--search text] [--long] [--cached]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filters.register(fs)
	fs.BoolVar(&c.cached, "cached", false, "")
	fs.BoolVar(&c.long, "long", false, "")
	fs.BoolVar(&c.long, "l", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	criteria, err := c.filters.criteria()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	notes := notify.NewWriter(out, errOut, cfg.Quiet)
	var board *tasks.Board
	if c.cached {
		board = tasks.NewBoard(svc, notes)
		if code := c.restore(ctx, cfg, board, errOut); code != exitcode.Success {
			return code
		}
	} else {
		var closeCache func()
		board, closeCache = openBoard(ctx, cfg, svc, notes)
		defer closeCache()
		if err := board.Refresh(ctx); err != nil {
			return fail(errOut, err)
		}
	}

	board.SetCriteria(criteria)
	visible := board.Visible()
	if len(visible) == 0 {
		if !cfg.Quiet {
			if criteria.Active() {
				fmt.Fprintln(out, "no tasks match the current filters")
			} else {
				fmt.Fprintln(out, "no tasks found")
			}
		}
		return exitcode.Success
	}

	now := time.Now()
	for i, t := range visible {
		if c.long {
			if i > 0 {
				fmt.Fprintln(out)
			}
			output.FormatTaskDetail(out, t, now)
			continue
		}
		output.FormatTask(out, t, now)
	}
	return exitcode.Success
}

// restore seeds board from the local snapshot.
func (c *ListCmd) restore(ctx context.Context, cfg *config.Config, board *tasks.Board, errOut io.Writer) int {
	store, err := cache.Open(cfg.CachePath())
	if err != nil {
		fmt.Fprintf(errOut, "error: cache unavailable: %v\n", err)
		return exitcode.UserError
	}
	defer store.Close()

	snap, err := store.Load(ctx)
	if errors.Is(err, cache.ErrEmpty) {
		fmt.Fprintln(errOut, "error: no cached tasks (run: taskdeck list)")
		return exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: cache unavailable: %v\n", err)
		return exitcode.UserError
	}
	board.Restore(snap.Tasks, snap.Stats)
	if !cfg.Quiet {
		fmt.Fprintf(errOut, "cached at %s\n", snap.FetchedAt.Local().Format(output.TimestampLayout))
	}
	return exitcode.Success
}
