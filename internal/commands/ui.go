package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/logging"
	"taskdeck/internal/notify"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/tasks"
	"taskdeck/internal/ui"
)

// uiLogFile receives log output while the dashboard owns the terminal.
const uiLogFile = "ui.log"

func init() {
	Register(&UICmd{})
}

// UICmd opens the interactive dashboard.
type UICmd struct{}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return []string{"dashboard"} }
func (c *UICmd) Synopsis() string  { return "Open the interactive dashboard" }
func (c *UICmd) Usage() string     { return "taskdeck ui" }
func (c *UICmd) NeedsAuth() bool   { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	level := logging.From(ctx).GetLevel()
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}
	logPath := filepath.Join(cfg.Dir, uiLogFile)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	defer logFile.Close()
	ctx = logging.WithLogger(ctx, logging.New(logFile, logging.Options{Level: level, ReportTimestamp: true}))

	notes := notify.NewQueue()
	store, err := cache.Open(cfg.CachePath())
	if err != nil {
		logging.From(ctx).Warn("cache unavailable", "err", err)
		return c.run(ctx, cfg, sess, tasks.NewBoard(svc, notes), notes, errOut)
	}
	defer store.Close()

	// Show the last snapshot until the first refresh lands.
	board := tasks.NewBoard(svc, notes, tasks.WithSnapshotter(store))
	if snap, err := store.Load(ctx); err == nil {
		board.Restore(snap.Tasks, snap.Stats)
	}
	return c.run(ctx, cfg, sess, board, notes, errOut)
}

func (c *UICmd) run(ctx context.Context, cfg *config.Config, sess *session.Context, board *tasks.Board, notes *notify.Queue, errOut io.Writer) int {
	m := ui.New(ctx, ui.Options{
		Board:   board,
		Notes:   notes,
		Session: sess,
		SaveTheme: func(theme string) error {
			cfg.Settings.Theme = theme
			return cfg.SaveSettings()
		},
	})
	if err := ui.Run(ctx, m); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
