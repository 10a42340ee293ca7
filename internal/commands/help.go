package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdeck help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Context, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := DefaultRegistry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
		return exitcode.Success
	}
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                           List all tasks
  taskdeck list [common flags] [--status s] [--category c] [--priority p]
                [--search text] [--long] [--cached]
  taskdeck add [common flags] [--description d] [--due YYYY-MM-DD]
               [--priority p] [--status s] [--category c] [--tag t]... <title...>
  taskdeck edit [common flags] [--title t] [--description d] [--due YYYY-MM-DD | --no-due]
                [--priority p] [--status s] [--category c] [--tag t]... [--no-tags] <id>
  taskdeck status [common flags] <id> <pending|in-progress|completed>
  taskdeck done [common flags] <id>
  taskdeck rm [common flags] [--force] <id>
  taskdeck stats [common flags]
  taskdeck export [common flags] [--format csv|json|pdf] [--out file] [filters]
  taskdeck ui [common flags]
  taskdeck login [common flags] [--email e] [--password p]
  taskdeck register [common flags] [--name n] [--email e] [--password p]
  taskdeck logout [common flags]
  taskdeck whoami [common flags]
  taskdeck theme [common flags] [light|dark|toggle]
  taskdeck health [common flags]
  taskdeck help [command]
  taskdeck version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
