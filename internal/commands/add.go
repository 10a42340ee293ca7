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
	"taskdeck/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	due         string
	priority    string
	status      string
	category    string
	tags        tagList
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskdeck add [--description d] [--due YYYY-MM-DD] [--priority p] [--status s] [--category c] [--tag t]... <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.category, "category", "", "")
	c.tags = tagList{}
	fs.Var(&c.tags, "tag", "")
	fs.Var(&c.tags, "t", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	ed := tasks.NewEditor(nil)
	ed.SetTitle(strings.Join(args, " "))
	ed.SetDescription(c.description)
	ed.SetDueDate(c.due)
	if c.priority != "" {
		p, err := service.ParsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		ed.SetPriority(p)
	}
	if c.status != "" {
		s, err := service.ParseStatus(c.status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		ed.SetStatus(s)
	}
	if c.category != "" {
		cat, err := service.ParseCategory(c.category)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		ed.SetCategory(cat)
	}
	for _, t := range c.tags.tags {
		ed.AddTag(t)
	}

	// Validation errors never reach the API.
	if _, err := ed.Input(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", tasks.Message(err))
		return exitcode.UserError
	}

	board := tasks.NewBoard(svc, notify.NewWriter(out, errOut, cfg.Quiet))
	if err := ed.Submit(ctx, board.Saver("")); err != nil {
		return fail(errOut, err)
	}
	if all := board.Tasks(); len(all) > 0 && !cfg.Quiet {
		output.FormatTask(out, all[0], time.Now())
	}
	return exitcode.Success
}
