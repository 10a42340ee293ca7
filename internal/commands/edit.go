package commands

import (
	"context"
	"errors"
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
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given fields are sent.
type EditCmd struct {
	title       optString
	description optString
	due         optString
	noDue       bool
	priority    optString
	status      optString
	category    optString
	tags        tagList
	noTags      bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Update fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskdeck edit [--title t] [--description d] [--due YYYY-MM-DD | --no-due] [--priority p] [--status s] [--category c] [--tag t]... [--no-tags] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.due, "due", "")
	fs.BoolVar(&c.noDue, "no-due", false, "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.category, "category", "")
	fs.Var(&c.tags, "tag", "")
	fs.Var(&c.tags, "t", "")
	fs.BoolVar(&c.noTags, "no-tags", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := taskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	patch, err := c.patch()
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", tasks.Message(err))
		return exitcode.UserError
	}
	if patch.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}

	board := tasks.NewBoard(svc, notify.NewWriter(out, errOut, cfg.Quiet))
	updated, err := board.Update(ctx, id, patch)
	if err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		output.FormatTask(out, updated, time.Now())
	}
	return exitcode.Success
}

func (c *EditCmd) patch() (service.TaskPatch, error) {
	var p service.TaskPatch
	if c.title.set {
		title := c.title.value
		if strings.TrimSpace(title) == "" {
			return p, tasks.ErrTitleRequired
		}
		p.Title = &title
	}
	if c.description.set {
		desc := c.description.value
		p.Description = &desc
	}
	switch {
	case c.noDue && c.due.set:
		return p, errors.New("cannot use both --due and --no-due")
	case c.noDue:
		p.ClearDueDate = true
	case c.due.set:
		d, err := parseDue(c.due.value)
		if err != nil {
			return p, err
		}
		if d == nil {
			p.ClearDueDate = true
		} else {
			p.DueDate = d
		}
	}
	if c.priority.set {
		v, err := service.ParsePriority(c.priority.value)
		if err != nil {
			return p, err
		}
		p.Priority = &v
	}
	if c.status.set {
		v, err := service.ParseStatus(c.status.value)
		if err != nil {
			return p, err
		}
		p.Status = &v
	}
	if c.category.set {
		v, err := service.ParseCategory(c.category.value)
		if err != nil {
			return p, err
		}
		p.Category = &v
	}
	switch {
	case c.noTags && c.tags.set:
		return p, errors.New("cannot use both --tag and --no-tags")
	case c.noTags:
		p.Tags = &[]string{}
	case c.tags.set:
		tags := dedupe(c.tags.tags)
		p.Tags = &tags
	}
	return p, nil
}

// dedupe drops repeated tags, keeping first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
