package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/logging"
	"taskdeck/internal/notify"
	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
)

// loginHint is appended to errors a new login would fix.
const loginHint = "(run: taskdeck login)"

// optString is a string flag that remembers whether it was given.
type optString struct {
	set   bool
	value string
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.set, o.value = true, s
	return nil
}

// tagList collects a repeatable --tag flag. Each value may itself hold
// comma-separated tags.
type tagList struct {
	set  bool
	tags []string
}

func (l *tagList) String() string { return strings.Join(l.tags, ",") }

func (l *tagList) Set(s string) error {
	l.set = true
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			l.tags = append(l.tags, t)
		}
	}
	return nil
}

// filterFlags are the list criteria shared by list and export.
type filterFlags struct {
	status   string
	category string
	priority string
	search   string
}

func (f *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.status, "status", "", "")
	fs.StringVar(&f.category, "category", "", "")
	fs.StringVar(&f.priority, "priority", "", "")
	fs.StringVar(&f.search, "search", "", "")
}

func (f filterFlags) criteria() (tasks.Criteria, error) {
	c := tasks.Criteria{Search: strings.TrimSpace(f.search)}
	var err error
	if f.status != "" {
		if c.Status, err = service.ParseStatus(f.status); err != nil {
			return c, err
		}
	}
	if f.category != "" {
		if c.Category, err = service.ParseCategory(f.category); err != nil {
			return c, err
		}
	}
	if f.priority != "" {
		if c.Priority, err = service.ParsePriority(f.priority); err != nil {
			return c, err
		}
	}
	return c, nil
}

// openBoard creates a board that snapshots every refresh into the local
// cache. A cache that cannot be opened is logged and skipped.
func openBoard(ctx context.Context, cfg *config.Config, svc service.Service, notes notify.Notifier) (*tasks.Board, func()) {
	store, err := cache.Open(cfg.CachePath())
	if err != nil {
		logging.From(ctx).Warn("cache unavailable", "path", cfg.CachePath(), "err", err)
		return tasks.NewBoard(svc, notes), func() {}
	}
	board := tasks.NewBoard(svc, notes, tasks.WithSnapshotter(store))
	return board, func() {
		if err := store.Close(); err != nil {
			logging.From(ctx).Warn("failed to close cache", "err", err)
		}
	}
}

// fail reports err on errOut and returns the matching exit code.
func fail(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, tasks.ErrTitleRequired):
		fmt.Fprintf(errOut, "error: %s\n", tasks.MsgTitleRequired)
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: session expired or revoked %s\n", loginHint)
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.Is(err, service.ErrRejected):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// taskID validates the single positional task id argument.
func taskID(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("task id required")
	}
	return strings.TrimSpace(args[0]), nil
}

// parseDue parses a due-date flag value. An empty value means no due date.
func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(service.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return &d, nil
}
