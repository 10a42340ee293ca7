package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd prints the server-reported task statistics.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Show task statistics" }
func (c *StatsCmd) Usage() string     { return "taskdeck stats" }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	s, err := svc.Stats(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	output.FormatStats(out, s)
	return exitcode.Success
}
