package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/export"
	"taskdeck/internal/logging"
	"taskdeck/internal/notify"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd writes the filtered task list and stats as a report.
type ExportCmd struct {
	filters filterFlags
	format  string
	outPath string
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export tasks as CSV, JSON or PDF" }
func (c *ExportCmd) Usage() string {
	return "taskdeck export [--format csv|json|pdf] [--out file] [--status s] [--category c] [--priority p] [--search text]"
}
func (c *ExportCmd) NeedsAuth() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filters.register(fs)
	fs.StringVar(&c.format, "format", string(export.FormatCSV), "")
	fs.StringVar(&c.outPath, "out", "", "")
	fs.StringVar(&c.outPath, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	format, err := export.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	criteria, err := c.filters.criteria()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if format == export.FormatPDF && c.outPath == "" {
		fmt.Fprintln(errOut, "error: pdf export needs --out")
		return exitcode.UserError
	}

	// Notifications go to stderr so stdout carries only the report.
	board, closeCache := openBoard(ctx, cfg, svc, notify.NewWriter(errOut, errOut, true))
	defer closeCache()
	if err := board.Refresh(ctx); err != nil {
		return fail(errOut, err)
	}
	board.SetCriteria(criteria)

	report := export.Report{
		Tasks:       board.Visible(),
		Stats:       board.Stats(),
		GeneratedAt: time.Now(),
	}

	if c.outPath == "" || c.outPath == "-" {
		if err := export.Write(out, format, report); err != nil {
			fmt.Fprintf(errOut, "error: export failed: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	f, err := os.Create(c.outPath)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := export.Write(f, format, report); err != nil {
		f.Close()
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.UserError
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	logging.From(ctx).Debug("exported", "format", format, "path", c.outPath, "tasks", len(report.Tasks))
	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %d tasks to %s\n", len(report.Tasks), c.outPath)
	}
	return exitcode.Success
}
