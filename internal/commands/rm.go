package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/notify"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/tasks"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. Without --force it asks for
// confirmation on stdin.
type RmCmd struct {
	force bool
	in    io.Reader
}

// SetInput sets the confirmation input (for testing).
func (c *RmCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskdeck rm [--force] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := taskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	board := tasks.NewBoard(svc, notify.NewWriter(out, errOut, cfg.Quiet))
	if !c.force {
		if err := board.Refresh(ctx); err != nil {
			return fail(errOut, err)
		}
		t, ok := board.Task(id)
		if !ok {
			fmt.Fprintf(errOut, "error: task not found: %s\n", id)
			return exitcode.UserError
		}
		if !c.confirm(errOut, t.Title) {
			if !cfg.Quiet {
				fmt.Fprintln(out, "cancelled")
			}
			return exitcode.Success
		}
	}

	if err := board.Delete(ctx, id); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}

func (c *RmCmd) confirm(errOut io.Writer, title string) bool {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprintf(errOut, "Delete %q? [y/N] ", title)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
